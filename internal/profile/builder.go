// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile turns an author summary and their works into a normalized
// ResearchProfile: a sparse concept-weight vector, the co-author adjacency,
// the median publication year and the last known institution.
package profile

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/pdiddy/collab-finder/internal/logging"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// ErrProfileUnavailable means no author summary could be obtained.
var ErrProfileUnavailable = errors.New("profile unavailable")

// Builder builds profiles. The zero value uses the defaults.
type Builder struct {
	// MaxWorks caps the works kept in a profile (default 200).
	MaxWorks int

	// MaxAuthorsPerWork bounds the works whose co-authors are linked to each
	// other as well as to the profile author (default 100). Larger works
	// contribute only edges to the profile author.
	MaxAuthorsPerWork int

	Log *zap.Logger
}

// Build aggregates works for author. Works without an id are skipped. An
// empty works list yields a profile with empty aggregates and no median year.
func (b *Builder) Build(author *types.AuthorRecord, works []types.WorkRecord) (*types.ResearchProfile, error) {
	if author == nil || author.ID == "" {
		return nil, fmt.Errorf("building profile: %w", ErrProfileUnavailable)
	}
	log := logging.OrNop(b.Log)

	maxWorks := b.MaxWorks
	if maxWorks <= 0 {
		maxWorks = types.DefaultMaxWorks
	}
	maxAuthors := b.MaxAuthorsPerWork
	if maxAuthors <= 0 {
		maxAuthors = types.DefaultMaxAuthorsPerWork
	}

	valid := make([]types.WorkRecord, 0, len(works))
	for _, w := range works {
		if w.ID == "" {
			log.Warn("skipping work",
				zap.String("author_id", author.ID),
				zap.Error(&source.MalformedRecordError{Kind: source.KindWork, Reason: "missing id"}),
			)
			continue
		}
		valid = append(valid, w)
	}
	slices.SortStableFunc(valid, newestFirst)
	if len(valid) > maxWorks {
		valid = valid[:maxWorks]
	}

	p := &types.ResearchProfile{
		AuthorID:      author.ID,
		DisplayName:   author.DisplayName,
		WorksCount:    author.WorksCount,
		CitedByCount:  author.CitedByCount,
		ConceptCounts: make(map[string]float64),
		ConceptNames:  make(map[string]string),
		Coauthors:     make(map[string]string),
		CoauthorGraph: make(types.CoauthorGraph),
		Works:         make([]types.WorkSummary, 0, len(valid)),
	}
	if !author.LastKnownInstitution.IsZero() {
		inst := *author.LastKnownInstitution
		p.Institution = &inst
	}

	years := make([]int, 0, len(valid))
	for _, w := range valid {
		summary := addWork(p, w, maxAuthors)
		p.Works = append(p.Works, summary)
		if w.PublicationYear > 0 {
			years = append(years, w.PublicationYear)
		}
	}
	p.MedianYear = Median(years)

	log.Debug("profile built",
		zap.String("author_id", p.AuthorID),
		zap.Int("works", len(p.Works)),
		zap.Int("concepts", len(p.ConceptCounts)),
		zap.Int("coauthors", len(p.Coauthors)),
	)
	return p, nil
}

// addWork folds one work into p and returns its summary.
func addWork(p *types.ResearchProfile, w types.WorkRecord, maxAuthors int) types.WorkSummary {
	s := types.WorkSummary{
		ID:            w.ID,
		Title:         w.Title,
		Year:          w.PublicationYear,
		CitationCount: w.CitedByCount,
	}

	for _, c := range w.Concepts {
		if c.ID == "" {
			continue
		}
		score := max(c.Score, 0)
		p.ConceptCounts[c.ID] += score
		if _, ok := p.ConceptNames[c.ID]; !ok || p.ConceptNames[c.ID] == "" {
			p.ConceptNames[c.ID] = c.DisplayName
		}
		if !slices.Contains(s.ConceptIDs, c.ID) {
			s.ConceptIDs = append(s.ConceptIDs, c.ID)
		}
	}

	var others []string
	for _, a := range w.Authorships {
		if a.AuthorID == "" || slices.Contains(s.AuthorIDs, a.AuthorID) {
			continue
		}
		s.AuthorIDs = append(s.AuthorIDs, a.AuthorID)
		if a.AuthorID == p.AuthorID {
			continue
		}
		others = append(others, a.AuthorID)
		name := a.AuthorName
		if name == "" {
			name = a.AuthorID
		}
		if p.Coauthors[a.AuthorID] == "" || p.Coauthors[a.AuthorID] == a.AuthorID {
			p.Coauthors[a.AuthorID] = name
		}
		p.CoauthorGraph.AddEdge(p.AuthorID, a.AuthorID)
	}

	if len(s.AuthorIDs) <= maxAuthors {
		for i := 0; i < len(others); i++ {
			for j := i + 1; j < len(others); j++ {
				p.CoauthorGraph.AddEdge(others[i], others[j])
			}
		}
	}
	return s
}

// newestFirst orders by publication year, then publication date, descending.
func newestFirst(a, b types.WorkRecord) int {
	if c := cmp.Compare(b.PublicationYear, a.PublicationYear); c != 0 {
		return c
	}
	return b.Published().Compare(a.Published())
}

// Median returns the median of years rounded half up, or nil for no years.
func Median(years []int) *int {
	if len(years) == 0 {
		return nil
	}
	sorted := slices.Clone(years)
	slices.Sort(sorted)
	n := len(sorted)
	var m int
	if n%2 == 1 {
		m = sorted[n/2]
	} else {
		// Years are positive, so (sum+1)/2 rounds a .5 median up.
		m = (sorted[n/2-1] + sorted[n/2] + 1) / 2
	}
	return &m
}
