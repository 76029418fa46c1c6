// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openalex

import (
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// OpenAlex API JSON structures.
type listResponse[T any] struct {
	Meta    meta `json:"meta"`
	Results []T  `json:"results"`
}

type meta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type groupResponse struct {
	Meta    meta      `json:"meta"`
	GroupBy []oaGroup `json:"group_by"`
}

type oaGroup struct {
	Key            string `json:"key"`
	KeyDisplayName string `json:"key_display_name"`
	Count          int    `json:"count"`
}

type oaDehydratedInstitution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	CountryCode string `json:"country_code"`
}

type oaScoredConcept struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

type oaAuthor struct {
	ID                    string                    `json:"id"`
	DisplayName           string                    `json:"display_name"`
	WorksCount            int                       `json:"works_count"`
	CitedByCount          int                       `json:"cited_by_count"`
	LastKnownInstitution  *oaDehydratedInstitution  `json:"last_known_institution"`
	LastKnownInstitutions []oaDehydratedInstitution `json:"last_known_institutions"`
	XConcepts             []oaScoredConcept         `json:"x_concepts"`
}

type oaConcept struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	WorksCount  int    `json:"works_count"`
}

type oaGeo struct {
	City        string   `json:"city"`
	Region      string   `json:"region"`
	CountryCode string   `json:"country_code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type oaInstitution struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	Type         string `json:"type"`
	CountryCode  string `json:"country_code"`
	WorksCount   int    `json:"works_count"`
	CitedByCount int    `json:"cited_by_count"`
	Geo          *oaGeo `json:"geo"`
}

type oaAuthorship struct {
	Author struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type oaWork struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	DisplayName     string            `json:"display_name"`
	PublicationYear int               `json:"publication_year"`
	PublicationDate string            `json:"publication_date"`
	CitedByCount    int               `json:"cited_by_count"`
	Concepts        []oaScoredConcept `json:"concepts"`
	Authorships     []oaAuthorship    `json:"authorships"`
}

func (a oaAuthor) toRecord() (types.AuthorRecord, error) {
	if a.ID == "" {
		return types.AuthorRecord{}, &source.MalformedRecordError{Kind: source.KindAuthor, Reason: "missing id"}
	}
	rec := types.AuthorRecord{
		ID:           a.ID,
		DisplayName:  a.DisplayName,
		WorksCount:   a.WorksCount,
		CitedByCount: a.CitedByCount,
	}
	// The plural field replaced the singular one; prefer it when present.
	switch {
	case len(a.LastKnownInstitutions) > 0:
		rec.LastKnownInstitution = a.LastKnownInstitutions[0].toInstitution()
	case a.LastKnownInstitution != nil:
		rec.LastKnownInstitution = a.LastKnownInstitution.toInstitution()
	}
	for _, c := range a.XConcepts {
		if c.ID != "" {
			rec.ConceptIDs = append(rec.ConceptIDs, c.ID)
		}
	}
	return rec, nil
}

func (i oaDehydratedInstitution) toInstitution() *types.Institution {
	inst := &types.Institution{
		ID:          i.ID,
		DisplayName: i.DisplayName,
		Type:        i.Type,
		CountryCode: i.CountryCode,
	}
	if inst.IsZero() {
		return nil
	}
	return inst
}

func (c oaConcept) toRecord() (types.ConceptRecord, error) {
	if c.ID == "" {
		return types.ConceptRecord{}, &source.MalformedRecordError{Kind: source.KindConcept, Reason: "missing id"}
	}
	return types.ConceptRecord{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		Description: c.Description,
		WorksCount:  c.WorksCount,
	}, nil
}

func (i oaInstitution) toRecord() (types.InstitutionRecord, error) {
	if i.ID == "" {
		return types.InstitutionRecord{}, &source.MalformedRecordError{Kind: source.KindInstitution, Reason: "missing id"}
	}
	rec := types.InstitutionRecord{
		ID:           i.ID,
		DisplayName:  i.DisplayName,
		Type:         i.Type,
		WorksCount:   i.WorksCount,
		CitedByCount: i.CitedByCount,
		CountryCode:  i.CountryCode,
	}
	if i.Geo != nil {
		rec.Latitude = i.Geo.Latitude
		rec.Longitude = i.Geo.Longitude
		rec.City = i.Geo.City
		rec.Region = i.Geo.Region
		if i.Geo.CountryCode != "" {
			rec.CountryCode = i.Geo.CountryCode
		}
	}
	return rec, nil
}

func (w oaWork) toRecord() (types.WorkRecord, error) {
	if w.ID == "" {
		return types.WorkRecord{}, &source.MalformedRecordError{Kind: source.KindWork, Reason: "missing id"}
	}
	title := w.Title
	if title == "" {
		title = w.DisplayName
	}
	rec := types.WorkRecord{
		ID:              w.ID,
		Title:           title,
		PublicationYear: w.PublicationYear,
		PublicationDate: w.PublicationDate,
		CitedByCount:    w.CitedByCount,
	}
	for _, c := range w.Concepts {
		if c.ID == "" {
			continue
		}
		rec.Concepts = append(rec.Concepts, types.ConceptTag{ID: c.ID, DisplayName: c.DisplayName, Score: c.Score})
	}
	for _, a := range w.Authorships {
		if a.Author.ID == "" {
			continue
		}
		rec.Authorships = append(rec.Authorships, types.Authorship{AuthorID: a.Author.ID, AuthorName: a.Author.DisplayName})
	}
	return rec, nil
}
