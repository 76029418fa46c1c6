// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source defines the record source contract shared by the live
// OpenAlex client, the SQLite snapshot store, and the offline corpus.
// Implementations return strongly-typed records or one of the errors in
// errors.go; callers never see raw payloads.
package source

import (
	"context"
	"strings"

	"github.com/pdiddy/collab-finder/pkg/types"
)

// IDPrefix is the namespace of canonical entity ids.
const IDPrefix = "https://openalex.org/"

// CanonicalID returns id in its long form. Bare ids such as "A123" gain
// IDPrefix; empty and already-prefixed ids are returned trimmed.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, "http") {
		return id
	}
	return IDPrefix + id
}

// Kind names an entity collection of the bibliographic graph.
type Kind string

const (
	KindConcept     Kind = "concept"
	KindAuthor      Kind = "author"
	KindInstitution Kind = "institution"
	KindWork        Kind = "work"
)

// Query filters a search. Text matches display names (and concept
// descriptions); ConceptID restricts results to entities tagged with a
// concept. Either may be empty, not both.
type Query struct {
	Text      string
	ConceptID string
}

// IsEmpty reports whether the query has no terms.
func (q Query) IsEmpty() bool {
	return q.Text == "" && q.ConceptID == ""
}

// WorksFilter selects works by author or concept.
type WorksFilter struct {
	AuthorID  string
	ConceptID string
}

// IsEmpty reports whether the filter selects nothing.
func (f WorksFilter) IsEmpty() bool {
	return f.AuthorID == "" && f.ConceptID == ""
}

// Source is a provider of bibliographic records.
//
// Search and get-by-id are expressed per kind so each returns its own record
// type. GroupedCounts accepts KindConcept (group works by concept) and
// KindAuthor (group works by author). ListWorks returns works newest first.
type Source interface {
	Name() string

	SearchConcepts(ctx context.Context, q Query, limit int) ([]types.ConceptRecord, error)
	SearchAuthors(ctx context.Context, q Query, limit int) ([]types.AuthorRecord, error)
	SearchInstitutions(ctx context.Context, q Query, limit int) ([]types.InstitutionRecord, error)

	Concept(ctx context.Context, id string) (types.ConceptRecord, error)
	Author(ctx context.Context, id string) (types.AuthorRecord, error)
	Institution(ctx context.Context, id string) (types.InstitutionRecord, error)

	GroupedCounts(ctx context.Context, kind Kind, window types.Window) ([]types.GroupCount, error)
	ListWorks(ctx context.Context, filter WorksFilter, limit int) ([]types.WorkRecord, error)
}

// Dump is a complete set of records, used to seed a snapshot store. Its YAML
// form has the offline corpus layout without trend counts.
type Dump struct {
	Concepts     []types.ConceptRecord     `yaml:"concepts"`
	Institutions []types.InstitutionRecord `yaml:"institutions"`
	Authors      []types.AuthorRecord      `yaml:"authors"`
	Works        []types.WorkRecord        `yaml:"works"`
}

// Dumper is implemented by sources that can export everything they hold.
type Dumper interface {
	Dump() Dump
}
