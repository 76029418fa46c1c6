// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package offline holds the static corpus served when the live record source
// cannot answer. The corpus is parsed once at start-up and never mutated; every
// accessor returns copies, so a single Corpus is safe for any number of
// concurrent readers.
//
// Records share the shape of live records. The embedded corpus.yaml is used
// unless a replacement file is configured.
package offline

import (
	"cmp"
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

//go:embed corpus.yaml
var embedded []byte

// Name identifies the corpus in logs and metrics.
const Name = "offline"

type trendLists struct {
	Recent   []types.GroupCount `yaml:"recent"`
	Previous []types.GroupCount `yaml:"previous"`
}

type corpusFile struct {
	Concepts     []types.ConceptRecord     `yaml:"concepts"`
	Institutions []types.InstitutionRecord `yaml:"institutions"`
	Authors      []types.AuthorRecord      `yaml:"authors"`
	Works        []types.WorkRecord        `yaml:"works"`
	Trending     struct {
		Topics     trendLists `yaml:"topics"`
		Scientists trendLists `yaml:"scientists"`
	} `yaml:"trending"`
}

// Corpus is the immutable offline dataset. It implements source.Source and
// source.Dumper.
type Corpus struct {
	concepts     []types.ConceptRecord
	institutions []types.InstitutionRecord
	authors      []types.AuthorRecord
	works        []types.WorkRecord

	conceptByID     map[string]int
	institutionByID map[string]int
	authorByID      map[string]int

	topics     trendLists
	scientists trendLists
}

var (
	_ source.Source = (*Corpus)(nil)
	_ source.Dumper = (*Corpus)(nil)
)

// Load parses the embedded corpus.
func Load() (*Corpus, error) {
	return Parse(embedded)
}

// LoadFile parses a corpus file with the same layout as the embedded one.
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading offline corpus %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("offline corpus %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and indexes corpus YAML. Every record must carry a unique id.
func Parse(data []byte) (*Corpus, error) {
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing offline corpus: %w", err)
	}

	c := &Corpus{
		concepts:     f.Concepts,
		institutions: f.Institutions,
		authors:      f.Authors,
		works:        f.Works,
		topics:       f.Trending.Topics,
		scientists:   f.Trending.Scientists,
	}

	var err error
	if c.conceptByID, err = index(source.KindConcept, c.concepts, func(r types.ConceptRecord) string { return r.ID }); err != nil {
		return nil, err
	}
	if c.institutionByID, err = index(source.KindInstitution, c.institutions, func(r types.InstitutionRecord) string { return r.ID }); err != nil {
		return nil, err
	}
	if c.authorByID, err = index(source.KindAuthor, c.authors, func(r types.AuthorRecord) string { return r.ID }); err != nil {
		return nil, err
	}
	if _, err = index(source.KindWork, c.works, func(r types.WorkRecord) string { return r.ID }); err != nil {
		return nil, err
	}
	return c, nil
}

func index[T any](kind source.Kind, recs []T, id func(T) string) (map[string]int, error) {
	m := make(map[string]int, len(recs))
	for i, r := range recs {
		key := id(r)
		if key == "" {
			return nil, &source.MalformedRecordError{Kind: kind, Reason: fmt.Sprintf("entry %d has no id", i)}
		}
		if _, dup := m[key]; dup {
			return nil, &source.MalformedRecordError{Kind: kind, ID: key, Reason: "duplicate id"}
		}
		m[key] = i
	}
	return m, nil
}

// Name returns the source identifier.
func (c *Corpus) Name() string { return Name }

// SearchConcepts matches display names and descriptions case-insensitively.
func (c *Corpus) SearchConcepts(_ context.Context, q source.Query, limit int) ([]types.ConceptRecord, error) {
	out := []types.ConceptRecord{}
	if q.IsEmpty() {
		return out, nil
	}
	for _, r := range c.concepts {
		if q.ConceptID != "" && r.ID != source.CanonicalID(q.ConceptID) {
			continue
		}
		if q.Text != "" && !contains(r.DisplayName, q.Text) && !contains(r.Description, q.Text) {
			continue
		}
		out = append(out, r)
	}
	return truncate(out, limit), nil
}

// SearchAuthors matches display names, or lists authors tagged with the
// query's concept ordered by works count.
func (c *Corpus) SearchAuthors(_ context.Context, q source.Query, limit int) ([]types.AuthorRecord, error) {
	out := []types.AuthorRecord{}
	if q.IsEmpty() {
		return out, nil
	}
	for _, r := range c.authors {
		if !matches(q, r.DisplayName, r.ConceptIDs) {
			continue
		}
		out = append(out, copyAuthor(r))
	}
	if q.ConceptID != "" {
		slices.SortStableFunc(out, func(a, b types.AuthorRecord) int { return cmp.Compare(b.WorksCount, a.WorksCount) })
	}
	return truncate(out, limit), nil
}

// SearchInstitutions matches display names, or lists institutions tagged with
// the query's concept ordered by works count.
func (c *Corpus) SearchInstitutions(_ context.Context, q source.Query, limit int) ([]types.InstitutionRecord, error) {
	out := []types.InstitutionRecord{}
	if q.IsEmpty() {
		return out, nil
	}
	for _, r := range c.institutions {
		if !matches(q, r.DisplayName, r.ConceptIDs) {
			continue
		}
		out = append(out, copyInstitution(r))
	}
	if q.ConceptID != "" {
		slices.SortStableFunc(out, func(a, b types.InstitutionRecord) int { return cmp.Compare(b.WorksCount, a.WorksCount) })
	}
	return truncate(out, limit), nil
}

// Concept returns the concept with id, accepting short or long ids.
func (c *Corpus) Concept(_ context.Context, id string) (types.ConceptRecord, error) {
	i, ok := c.conceptByID[source.CanonicalID(id)]
	if !ok {
		return types.ConceptRecord{}, fmt.Errorf("offline concept %s: %w", id, source.ErrNotFound)
	}
	return c.concepts[i], nil
}

// Author returns the author summary with id.
func (c *Corpus) Author(_ context.Context, id string) (types.AuthorRecord, error) {
	i, ok := c.authorByID[source.CanonicalID(id)]
	if !ok {
		return types.AuthorRecord{}, fmt.Errorf("offline author %s: %w", id, source.ErrNotFound)
	}
	return copyAuthor(c.authors[i]), nil
}

// Institution returns the institution with id.
func (c *Corpus) Institution(_ context.Context, id string) (types.InstitutionRecord, error) {
	i, ok := c.institutionByID[source.CanonicalID(id)]
	if !ok {
		return types.InstitutionRecord{}, fmt.Errorf("offline institution %s: %w", id, source.ErrNotFound)
	}
	return copyInstitution(c.institutions[i]), nil
}

// GroupedCounts counts corpus works published inside window, grouped by
// concept or author. Buckets are ordered by count descending, then key.
func (c *Corpus) GroupedCounts(_ context.Context, kind source.Kind, window types.Window) ([]types.GroupCount, error) {
	if kind != source.KindConcept && kind != source.KindAuthor {
		return nil, fmt.Errorf("offline grouped counts by %s: %w", kind, source.ErrUnsupported)
	}

	buckets := make(map[string]*types.GroupCount)
	bump := func(key, name string) {
		b, ok := buckets[key]
		if !ok {
			b = &types.GroupCount{Key: key, DisplayName: name}
			buckets[key] = b
		}
		b.Count++
	}
	for _, w := range c.works {
		if !window.Contains(w.Published()) {
			continue
		}
		if kind == source.KindConcept {
			for _, t := range w.Concepts {
				bump(t.ID, t.DisplayName)
			}
			continue
		}
		for _, a := range w.Authorships {
			bump(a.AuthorID, a.AuthorName)
		}
	}

	out := make([]types.GroupCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b types.GroupCount) int {
		if n := cmp.Compare(b.Count, a.Count); n != 0 {
			return n
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out, nil
}

// ListWorks returns works matching every non-empty filter field, newest
// first. A limit of zero or less returns all matches.
func (c *Corpus) ListWorks(_ context.Context, filter source.WorksFilter, limit int) ([]types.WorkRecord, error) {
	out := []types.WorkRecord{}
	if filter.IsEmpty() {
		return out, nil
	}
	authorID := source.CanonicalID(filter.AuthorID)
	conceptID := source.CanonicalID(filter.ConceptID)
	for _, w := range c.works {
		if authorID != "" && !slices.ContainsFunc(w.Authorships, func(a types.Authorship) bool { return a.AuthorID == authorID }) {
			continue
		}
		if conceptID != "" && !slices.ContainsFunc(w.Concepts, func(t types.ConceptTag) bool { return t.ID == conceptID }) {
			continue
		}
		out = append(out, copyWork(w))
	}
	slices.SortStableFunc(out, func(a, b types.WorkRecord) int {
		if n := b.Published().Compare(a.Published()); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return truncate(out, limit), nil
}

// TrendCounts returns the stored recent and previous window counts for
// KindConcept (topics) or KindAuthor (scientists).
func (c *Corpus) TrendCounts(kind source.Kind) (recent, previous []types.GroupCount, err error) {
	var lists trendLists
	switch kind {
	case source.KindConcept:
		lists = c.topics
	case source.KindAuthor:
		lists = c.scientists
	default:
		return nil, nil, fmt.Errorf("offline trend counts by %s: %w", kind, source.ErrUnsupported)
	}
	return slices.Clone(lists.Recent), slices.Clone(lists.Previous), nil
}

// Dump exports every record.
func (c *Corpus) Dump() source.Dump {
	d := source.Dump{
		Concepts:     slices.Clone(c.concepts),
		Authors:      make([]types.AuthorRecord, 0, len(c.authors)),
		Institutions: make([]types.InstitutionRecord, 0, len(c.institutions)),
		Works:        make([]types.WorkRecord, 0, len(c.works)),
	}
	for _, a := range c.authors {
		d.Authors = append(d.Authors, copyAuthor(a))
	}
	for _, i := range c.institutions {
		d.Institutions = append(d.Institutions, copyInstitution(i))
	}
	for _, w := range c.works {
		d.Works = append(d.Works, copyWork(w))
	}
	return d
}

func matches(q source.Query, name string, conceptIDs []string) bool {
	if q.ConceptID != "" && !slices.Contains(conceptIDs, source.CanonicalID(q.ConceptID)) {
		return false
	}
	return q.Text == "" || contains(name, q.Text)
}

func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

func copyAuthor(a types.AuthorRecord) types.AuthorRecord {
	if a.LastKnownInstitution != nil {
		inst := *a.LastKnownInstitution
		a.LastKnownInstitution = &inst
	}
	a.ConceptIDs = slices.Clone(a.ConceptIDs)
	return a
}

func copyInstitution(i types.InstitutionRecord) types.InstitutionRecord {
	if i.Latitude != nil {
		v := *i.Latitude
		i.Latitude = &v
	}
	if i.Longitude != nil {
		v := *i.Longitude
		i.Longitude = &v
	}
	i.ConceptIDs = slices.Clone(i.ConceptIDs)
	return i
}

func copyWork(w types.WorkRecord) types.WorkRecord {
	w.Concepts = slices.Clone(w.Concepts)
	w.Authorships = slices.Clone(w.Authorships)
	return w
}
