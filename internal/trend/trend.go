// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trend ranks concepts (topics) and authors (scientists) by how their
// publication counts grew between two adjacent time windows, then enriches the
// top entries with summary details.
//
// The analyzer has no offline knowledge. When the grouped-count queries fail,
// the caller substitutes stored counts before ranking.
package trend

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/collab-finder/internal/logging"
	"github.com/pdiddy/collab-finder/internal/metrics"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// Windows are two contiguous, disjoint date ranges. Previous ends the day
// before Recent begins.
type Windows struct {
	Recent   types.Window
	Previous types.Window
}

// NewWindows builds the recent window [now-months, now] and the previous
// window of the same length before it, at UTC day precision. A non-positive
// months uses the default of 6.
func NewWindows(now time.Time, months int) Windows {
	if months <= 0 {
		months = types.DefaultWindowMonths
	}
	y, m, d := now.UTC().Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	recentFrom := end.AddDate(0, -months, 0)
	return Windows{
		Recent:   types.Window{From: recentFrom, To: end},
		Previous: types.Window{From: recentFrom.AddDate(0, -months, 0), To: recentFrom.AddDate(0, 0, -1)},
	}
}

// Counter answers grouped-count queries. source.Source satisfies it.
type Counter interface {
	GroupedCounts(ctx context.Context, kind source.Kind, window types.Window) ([]types.GroupCount, error)
}

// Count runs the recent and previous grouped-count queries. Any failure is
// reported as source.ErrUnavailable so the caller can substitute stored counts.
func Count(ctx context.Context, c Counter, kind source.Kind, w Windows) (recent, previous []types.GroupCount, err error) {
	recent, err = c.GroupedCounts(ctx, kind, w.Recent)
	if err != nil {
		return nil, nil, source.Unavailable(fmt.Sprintf("%s counts for %s", kind, w.Recent), err)
	}
	previous, err = c.GroupedCounts(ctx, kind, w.Previous)
	if err != nil {
		return nil, nil, source.Unavailable(fmt.Sprintf("%s counts for %s", kind, w.Previous), err)
	}
	return recent, previous, nil
}

// ClampLimit bounds a requested result size: non-positive becomes the
// default (5), anything above the maximum (20) becomes the maximum.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return types.DefaultTrendLimit
	case limit > types.MaxTrendLimit:
		return types.MaxTrendLimit
	}
	return limit
}

// Analyzer ranks and enriches trend entries.
type Analyzer struct {
	// Source supplies detail records for enrichment; nil skips enrichment.
	Source source.Source

	// Workers bounds concurrent enrichment lookups (default 8).
	Workers int

	Log     *zap.Logger
	Metrics *metrics.Metrics
}

// Rank scores every id in recent against previous, orders the entries, keeps
// the first limit (after ClampLimit) and enriches them. kind must be
// source.KindConcept (topics) or source.KindAuthor (scientists).
func (a *Analyzer) Rank(ctx context.Context, kind source.Kind, recent, previous []types.GroupCount, limit int) ([]types.TrendEntry, error) {
	if kind != source.KindConcept && kind != source.KindAuthor {
		return nil, fmt.Errorf("ranking %s: %w", kind, source.ErrUnsupported)
	}

	entries := Score(recent, previous)
	Sort(kind, entries)
	if n := ClampLimit(limit); len(entries) > n {
		entries = entries[:n]
	}

	if a.Source != nil {
		a.enrich(ctx, kind, entries)
	}
	return entries, nil
}

// Score builds one entry per distinct id in recent. Counts for a repeated
// id are summed; ids absent from previous have a previous count of 0.
func Score(recent, previous []types.GroupCount) []types.TrendEntry {
	prev := make(map[string]int, len(previous))
	for _, g := range previous {
		prev[g.Key] += g.Count
	}

	index := make(map[string]int, len(recent))
	entries := make([]types.TrendEntry, 0, len(recent))
	for _, g := range recent {
		if g.Key == "" {
			continue
		}
		if i, ok := index[g.Key]; ok {
			entries[i].RecentCount += g.Count
			continue
		}
		index[g.Key] = len(entries)
		entries = append(entries, types.TrendEntry{ID: g.Key, DisplayName: g.DisplayName, RecentCount: g.Count})
	}

	for i := range entries {
		e := &entries[i]
		e.PreviousCount = prev[e.ID]
		e.Growth = e.RecentCount - e.PreviousCount
		e.GrowthRate = GrowthRate(e.RecentCount, e.PreviousCount)
	}
	return entries
}

// GrowthRate is (recent-previous)/previous, or (recent-previous)/recent when
// previous is 0. It is 0 when recent is 0.
func GrowthRate(recent, previous int) float64 {
	if recent == 0 {
		return 0
	}
	denom := previous
	if denom <= 0 {
		denom = recent
	}
	return float64(recent-previous) / float64(denom)
}

// Sort orders topics by (growth, growth_rate, recent_count) and scientists by
// (recent_count, growth), all descending, with ties broken by ascending id.
func Sort(kind source.Kind, entries []types.TrendEntry) {
	slices.SortFunc(entries, func(x, y types.TrendEntry) int {
		var c int
		if kind == source.KindAuthor {
			c = cmp.Or(
				cmp.Compare(y.RecentCount, x.RecentCount),
				cmp.Compare(y.Growth, x.Growth),
			)
		} else {
			c = cmp.Or(
				cmp.Compare(y.Growth, x.Growth),
				cmp.Compare(y.GrowthRate, x.GrowthRate),
				cmp.Compare(y.RecentCount, x.RecentCount),
			)
		}
		return cmp.Or(c, cmp.Compare(x.ID, y.ID))
	})
}

// enrich fetches details for every entry concurrently. Each goroutine writes
// only its own slot; a failed lookup leaves that entry's detail fields nil.
func (a *Analyzer) enrich(ctx context.Context, kind source.Kind, entries []types.TrendEntry) {
	log := logging.OrNop(a.Log)
	workers := a.Workers
	if workers <= 0 {
		workers = types.DefaultTrendWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range entries {
		e := &entries[i]
		g.Go(func() error {
			var err error
			if kind == source.KindConcept {
				err = a.enrichConcept(gctx, e)
			} else {
				err = a.enrichAuthor(gctx, e)
			}
			if err != nil {
				log.Warn("trend enrichment failed",
					zap.String("kind", string(kind)),
					zap.String("id", e.ID),
					zap.Error(err),
				)
				if a.Metrics != nil {
					a.Metrics.EnrichmentFailures.WithLabelValues(string(kind)).Inc()
				}
			}
			// Failures degrade one entry; they never cancel the group.
			return nil
		})
	}
	_ = g.Wait()
}

func (a *Analyzer) enrichConcept(ctx context.Context, e *types.TrendEntry) error {
	c, err := a.Source.Concept(ctx, e.ID)
	if err != nil {
		return err
	}
	desc, works := c.Description, c.WorksCount
	e.Description = &desc
	e.WorksCount = &works
	if e.DisplayName == "" {
		e.DisplayName = c.DisplayName
	}
	return nil
}

func (a *Analyzer) enrichAuthor(ctx context.Context, e *types.TrendEntry) error {
	au, err := a.Source.Author(ctx, e.ID)
	if err != nil {
		return err
	}
	works, cited := au.WorksCount, au.CitedByCount
	e.WorksCount = &works
	e.CitedByCount = &cited
	e.LastKnownInstitution = au.LastKnownInstitution
	if e.DisplayName == "" {
		e.DisplayName = au.DisplayName
	}
	return nil
}
