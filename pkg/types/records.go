// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of collab-finder: the
// strongly-typed records a record source returns, the per-request entities
// built from them (profiles, trend entries, compatibility results, networks),
// and configuration.
//
// Records are mapped from the bibliographic source at the source boundary;
// nothing downstream sees loosely-typed payloads.
package types

import "time"

// Institution is the normalized institution attached to an author.
type Institution struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	CountryCode string `json:"country_code,omitempty" yaml:"country_code,omitempty"`
}

// IsZero reports whether the institution carries neither an id nor a name.
func (i *Institution) IsZero() bool {
	return i == nil || (i.ID == "" && i.DisplayName == "")
}

// AuthorRecord is the author summary returned by a record source.
type AuthorRecord struct {
	ID                   string       `json:"id" yaml:"id"`
	DisplayName          string       `json:"display_name" yaml:"display_name"`
	WorksCount           int          `json:"works_count" yaml:"works_count"`
	CitedByCount         int          `json:"cited_by_count" yaml:"cited_by_count"`
	LastKnownInstitution *Institution `json:"last_known_institution" yaml:"last_known_institution,omitempty"`

	// ConceptIDs lists concepts the author is associated with. Offline and
	// snapshot sources use it to answer authors-by-concept queries.
	ConceptIDs []string `json:"-" yaml:"concept_ids,omitempty"`
}

// ConceptRecord is a topical tag as returned by a record source.
type ConceptRecord struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description" yaml:"description,omitempty"`
	WorksCount  int    `json:"works_count" yaml:"works_count"`
}

// InstitutionRecord is an institution with activity counts and geo data.
// Geo fields are flattened so the JSON shape matches what map consumers expect.
type InstitutionRecord struct {
	ID           string   `json:"id" yaml:"id"`
	DisplayName  string   `json:"display_name" yaml:"display_name"`
	Type         string   `json:"type,omitempty" yaml:"type,omitempty"`
	WorksCount   int      `json:"works_count" yaml:"works_count"`
	CitedByCount int      `json:"cited_by_count" yaml:"cited_by_count"`
	Latitude     *float64 `json:"latitude" yaml:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude" yaml:"longitude,omitempty"`
	City         string   `json:"city" yaml:"city,omitempty"`
	Region       string   `json:"region" yaml:"region,omitempty"`
	CountryCode  string   `json:"country_code" yaml:"country_code,omitempty"`

	ConceptIDs []string `json:"-" yaml:"concept_ids,omitempty"`
}

// ConceptTag is a concept attached to a work with its relevance score.
type ConceptTag struct {
	ID          string  `json:"id" yaml:"id"`
	DisplayName string  `json:"display_name" yaml:"display_name"`
	Score       float64 `json:"score" yaml:"score"`
}

// Authorship is one author position on a work.
type Authorship struct {
	AuthorID   string `json:"author_id" yaml:"author_id"`
	AuthorName string `json:"author_name" yaml:"author_name"`
}

// WorkRecord is a single publication as returned by a record source.
type WorkRecord struct {
	ID              string       `json:"id" yaml:"id"`
	Title           string       `json:"title" yaml:"title"`
	PublicationYear int          `json:"publication_year" yaml:"publication_year"`
	PublicationDate string       `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	CitedByCount    int          `json:"cited_by_count" yaml:"cited_by_count"`
	Concepts        []ConceptTag `json:"concepts" yaml:"concepts"`
	Authorships     []Authorship `json:"authorships" yaml:"authorships"`
}

// Published returns the publication date, falling back to January 1 of the
// publication year. The zero time is returned when neither is known.
func (w WorkRecord) Published() time.Time {
	if w.PublicationDate != "" {
		if t, err := time.Parse(DateLayout, w.PublicationDate); err == nil {
			return t
		}
	}
	if w.PublicationYear > 0 {
		return time.Date(w.PublicationYear, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// GroupCount is one bucket of a grouped-count query: an entity id, its display
// name, and the number of works in the queried window.
type GroupCount struct {
	Key         string `json:"key" yaml:"key"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Count       int    `json:"count" yaml:"count"`
}

// DateLayout is the date format used by record sources and windows.
const DateLayout = "2006-01-02"

// Window is an inclusive date range at day precision.
type Window struct {
	From time.Time `json:"from" yaml:"from"`
	To   time.Time `json:"to" yaml:"to"`
}

// Contains reports whether t falls within the window, inclusive at both ends.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(w.From) && !t.After(w.To)
}

// String renders the window as "from..to".
func (w Window) String() string {
	return w.From.Format(DateLayout) + ".." + w.To.Format(DateLayout)
}
