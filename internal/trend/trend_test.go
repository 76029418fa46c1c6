// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/collab-finder/internal/metrics"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// --- fakes ---

// detailSource answers Concept and Author lookups; everything else is empty.
type detailSource struct {
	mu       sync.Mutex
	calls    int32
	inFlight int32
	maxSeen  int32
	delay    time.Duration
	fail     map[string]bool
}

func (s *detailSource) enter() {
	atomic.AddInt32(&s.calls, 1)
	n := atomic.AddInt32(&s.inFlight, 1)
	s.mu.Lock()
	if n > s.maxSeen {
		s.maxSeen = n
	}
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

func (s *detailSource) leave() { atomic.AddInt32(&s.inFlight, -1) }

func (s *detailSource) Name() string { return "detail" }

func (s *detailSource) SearchConcepts(context.Context, source.Query, int) ([]types.ConceptRecord, error) {
	return []types.ConceptRecord{}, nil
}

func (s *detailSource) SearchAuthors(context.Context, source.Query, int) ([]types.AuthorRecord, error) {
	return []types.AuthorRecord{}, nil
}

func (s *detailSource) SearchInstitutions(context.Context, source.Query, int) ([]types.InstitutionRecord, error) {
	return []types.InstitutionRecord{}, nil
}

func (s *detailSource) Concept(_ context.Context, id string) (types.ConceptRecord, error) {
	s.enter()
	defer s.leave()
	if s.fail[id] {
		return types.ConceptRecord{}, source.Unavailable("concept "+id, nil)
	}
	return types.ConceptRecord{ID: id, DisplayName: "name " + id, Description: "about " + id, WorksCount: 42}, nil
}

func (s *detailSource) Author(_ context.Context, id string) (types.AuthorRecord, error) {
	s.enter()
	defer s.leave()
	if s.fail[id] {
		return types.AuthorRecord{}, fmt.Errorf("author %s: %w", id, source.ErrNotFound)
	}
	return types.AuthorRecord{
		ID: id, DisplayName: "name " + id, WorksCount: 7, CitedByCount: 70,
		LastKnownInstitution: &types.Institution{ID: "I1", DisplayName: "Somewhere"},
	}, nil
}

func (s *detailSource) Institution(context.Context, string) (types.InstitutionRecord, error) {
	return types.InstitutionRecord{}, source.ErrNotFound
}

func (s *detailSource) GroupedCounts(context.Context, source.Kind, types.Window) ([]types.GroupCount, error) {
	return []types.GroupCount{}, nil
}

func (s *detailSource) ListWorks(context.Context, source.WorksFilter, int) ([]types.WorkRecord, error) {
	return []types.WorkRecord{}, nil
}

type counterFunc func(ctx context.Context, kind source.Kind, w types.Window) ([]types.GroupCount, error)

func (f counterFunc) GroupedCounts(ctx context.Context, kind source.Kind, w types.Window) ([]types.GroupCount, error) {
	return f(ctx, kind, w)
}

func counts(pairs ...any) []types.GroupCount {
	var out []types.GroupCount
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, types.GroupCount{Key: pairs[i].(string), Count: pairs[i+1].(int)})
	}
	return out
}

func ids(entries []types.TrendEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// --- windows ---

func TestNewWindows(t *testing.T) {
	now := time.Date(2026, 10, 15, 13, 45, 0, 0, time.UTC)
	w := NewWindows(now, 6)

	assert.Equal(t, "2026-04-15..2026-10-15", w.Recent.String())
	assert.Equal(t, "2025-10-15..2026-04-14", w.Previous.String())
	assert.Equal(t, w.Recent.From.AddDate(0, 0, -1), w.Previous.To, "previous ends the day before recent begins")

	assert.Equal(t, w, NewWindows(now, 0), "non-positive months uses the default")
}

func TestNewWindows_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2026, 10, 16, 2, 0, 0, 0, loc) // 2026-10-15 16:00 UTC
	w := NewWindows(now, 3)
	assert.Equal(t, "2026-07-15..2026-10-15", w.Recent.String())
	assert.Equal(t, "2026-04-15..2026-07-14", w.Previous.String())
}

// --- scoring ---

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		recent, previous int
		want             float64
	}{
		{10, 5, 1.0},
		{10, 0, 1.0},
		{5, 10, -0.5},
		{0, 5, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d", tt.recent, tt.previous), func(t *testing.T) {
			assert.InDelta(t, tt.want, GrowthRate(tt.recent, tt.previous), 1e-9)
		})
	}
}

func TestScore(t *testing.T) {
	recent := []types.GroupCount{
		{Key: "C1", DisplayName: "One", Count: 10},
		{Key: "C2", DisplayName: "Two", Count: 4},
		{Key: "C1", DisplayName: "One", Count: 2},
		{Key: "", Count: 99},
	}
	previous := counts("C1", 6, "C3", 50)

	got := Score(recent, previous)
	require.Len(t, got, 2)

	assert.Equal(t, types.TrendEntry{ID: "C1", DisplayName: "One", RecentCount: 12, PreviousCount: 6, Growth: 6, GrowthRate: 1.0}, got[0])
	assert.Equal(t, types.TrendEntry{ID: "C2", DisplayName: "Two", RecentCount: 4, PreviousCount: 0, Growth: 4, GrowthRate: 1.0}, got[1])
}

func TestSort_Topics(t *testing.T) {
	entries := Score(
		counts("T-b", 20, "T-a", 20, "T-c", 30, "T-d", 15, "T-e", 5),
		counts("T-b", 10, "T-a", 10, "T-c", 20, "T-d", 5, "T-e", 10),
	)
	Sort(source.KindConcept, entries)
	// growth: a=10 b=10 c=10 d=10 e=-5; rate: a=1 b=1 c=.5 d=2
	assert.Equal(t, []string{"T-d", "T-a", "T-b", "T-c", "T-e"}, ids(entries))
}

func TestSort_Scientists(t *testing.T) {
	entries := Score(
		counts("A3", 10, "A1", 12, "A2", 10),
		counts("A3", 2, "A1", 30, "A2", 8),
	)
	Sort(source.KindAuthor, entries)
	assert.Equal(t, []string{"A1", "A3", "A2"}, ids(entries))
}

func TestSort_Deterministic(t *testing.T) {
	forward := counts("X1", 5, "X2", 5, "X3", 5, "X4", 5)
	backward := counts("X4", 5, "X3", 5, "X2", 5, "X1", 5)

	a := Score(forward, nil)
	b := Score(backward, nil)
	Sort(source.KindConcept, a)
	Sort(source.KindConcept, b)
	assert.Equal(t, ids(a), ids(b))
	assert.Equal(t, []string{"X1", "X2", "X3", "X4"}, ids(a))
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{-3, 5}, {0, 5}, {1, 1}, {7, 7}, {20, 20}, {21, 20}, {500, 20},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, ClampLimit(tt.in))
		})
	}
}

// --- Rank ---

func TestRank_TruncatesBeforeEnrichment(t *testing.T) {
	src := &detailSource{}
	a := &Analyzer{Source: src, Workers: 4}

	var recent []types.GroupCount
	for i := 0; i < 12; i++ {
		recent = append(recent, types.GroupCount{Key: fmt.Sprintf("C%02d", i), Count: 100 - i})
	}

	got, err := a.Rank(context.Background(), source.KindConcept, recent, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"C00", "C01", "C02"}, ids(got))
	assert.Equal(t, int32(3), atomic.LoadInt32(&src.calls))

	require.NotNil(t, got[0].Description)
	assert.Equal(t, "about C00", *got[0].Description)
	require.NotNil(t, got[0].WorksCount)
	assert.Equal(t, 42, *got[0].WorksCount)
	assert.Equal(t, "name C00", got[0].DisplayName, "missing name filled from detail")
}

func TestRank_FailedEnrichmentKeepsEntry(t *testing.T) {
	m := metrics.New()
	src := &detailSource{fail: map[string]bool{"A2": true}}
	a := &Analyzer{Source: src, Metrics: m}

	got, err := a.Rank(context.Background(), source.KindAuthor, counts("A1", 9, "A2", 8, "A3", 7), nil, 5)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2", "A3"}, ids(got))

	assert.Nil(t, got[1].WorksCount)
	assert.Nil(t, got[1].CitedByCount)
	assert.Nil(t, got[1].LastKnownInstitution)

	require.NotNil(t, got[0].CitedByCount)
	assert.Equal(t, 70, *got[0].CitedByCount)
	require.NotNil(t, got[2].LastKnownInstitution)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentFailures.WithLabelValues("author")))
}

func TestRank_BoundedConcurrency(t *testing.T) {
	src := &detailSource{delay: 5 * time.Millisecond}
	a := &Analyzer{Source: src, Workers: 2}

	var recent []types.GroupCount
	for i := 0; i < 10; i++ {
		recent = append(recent, types.GroupCount{Key: fmt.Sprintf("C%d", i), Count: 10})
	}
	_, err := a.Rank(context.Background(), source.KindConcept, recent, nil, 10)
	require.NoError(t, err)

	assert.Equal(t, int32(10), atomic.LoadInt32(&src.calls))
	assert.LessOrEqual(t, src.maxSeen, int32(2))
}

func TestRank_WithoutSourceSkipsEnrichment(t *testing.T) {
	a := &Analyzer{}
	got, err := a.Rank(context.Background(), source.KindConcept, counts("C1", 3), nil, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Description)
}

func TestRank_EmptyInput(t *testing.T) {
	a := &Analyzer{Source: &detailSource{}}
	got, err := a.Rank(context.Background(), source.KindAuthor, nil, nil, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_UnsupportedKind(t *testing.T) {
	a := &Analyzer{}
	_, err := a.Rank(context.Background(), source.KindWork, nil, nil, 5)
	assert.ErrorIs(t, err, source.ErrUnsupported)
}

// --- Count ---

func TestCount(t *testing.T) {
	w := NewWindows(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), 6)

	var seen []types.Window
	ok := counterFunc(func(_ context.Context, _ source.Kind, win types.Window) ([]types.GroupCount, error) {
		seen = append(seen, win)
		return counts("C1", len(seen)), nil
	})
	recent, previous, err := Count(context.Background(), ok, source.KindConcept, w)
	require.NoError(t, err)
	assert.Equal(t, 1, recent[0].Count)
	assert.Equal(t, 2, previous[0].Count)
	assert.Equal(t, []types.Window{w.Recent, w.Previous}, seen)

	calls := 0
	failSecond := counterFunc(func(context.Context, source.Kind, types.Window) ([]types.GroupCount, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("boom")
		}
		return counts("C1", 1), nil
	})
	_, _, err = Count(context.Background(), failSecond, source.KindConcept, w)
	assert.ErrorIs(t, err, source.ErrUnavailable)
}
