// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fallback

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/collab-finder/internal/metrics"
	"github.com/pdiddy/collab-finder/internal/offline"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/internal/trend"
	"github.com/pdiddy/collab-finder/pkg/types"
)

const feiFeiLi = "https://openalex.org/A1969205032"

// --- fakes ---

// stubLive is a live source whose every call fails with err when set.
type stubLive struct {
	err      error
	worksErr error
	calls    atomic.Int32

	authors  map[string]types.AuthorRecord
	works    []types.WorkRecord
	concepts []types.ConceptRecord
	counts   []types.GroupCount
}

func (s *stubLive) Name() string { return "stub" }

func (s *stubLive) SearchConcepts(context.Context, source.Query, int) ([]types.ConceptRecord, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.concepts, nil
}

func (s *stubLive) SearchAuthors(context.Context, source.Query, int) ([]types.AuthorRecord, error) {
	s.calls.Add(1)
	return nil, s.err
}

func (s *stubLive) SearchInstitutions(context.Context, source.Query, int) ([]types.InstitutionRecord, error) {
	s.calls.Add(1)
	return nil, s.err
}

func (s *stubLive) Concept(_ context.Context, id string) (types.ConceptRecord, error) {
	s.calls.Add(1)
	if s.err != nil {
		return types.ConceptRecord{}, s.err
	}
	return types.ConceptRecord{}, fmt.Errorf("concept %s: %w", id, source.ErrNotFound)
}

func (s *stubLive) Author(_ context.Context, id string) (types.AuthorRecord, error) {
	s.calls.Add(1)
	if s.err != nil {
		return types.AuthorRecord{}, s.err
	}
	a, ok := s.authors[id]
	if !ok {
		return types.AuthorRecord{}, fmt.Errorf("author %s: %w", id, source.ErrNotFound)
	}
	return a, nil
}

func (s *stubLive) Institution(_ context.Context, id string) (types.InstitutionRecord, error) {
	s.calls.Add(1)
	if s.err != nil {
		return types.InstitutionRecord{}, s.err
	}
	return types.InstitutionRecord{}, fmt.Errorf("institution %s: %w", id, source.ErrNotFound)
}

func (s *stubLive) GroupedCounts(context.Context, source.Kind, types.Window) ([]types.GroupCount, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.counts, nil
}

func (s *stubLive) ListWorks(context.Context, source.WorksFilter, int) ([]types.WorkRecord, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if s.worksErr != nil {
		return nil, s.worksErr
	}
	return s.works, nil
}

var errDown = source.Unavailable("stub", fmt.Errorf("connection refused"))

type fixture struct {
	r    *Resolver
	live *stubLive
	m    *metrics.Metrics
	logs *observer.ObservedLogs
}

func newFixture(t *testing.T, live *stubLive, cfg types.FallbackConfig) fixture {
	t.Helper()
	corpus, err := offline.Load()
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	m := metrics.New()
	var src source.Source
	if live != nil {
		src = live
	}
	r := New(src, corpus, WithLogger(zap.New(core)), WithMetrics(m), WithBreaker(cfg))
	return fixture{r: r, live: live, m: m, logs: logs}
}

// --- collections ---

func TestCollection_Live(t *testing.T) {
	f := newFixture(t, &stubLive{concepts: []types.ConceptRecord{{ID: "C1", DisplayName: "Live"}}}, types.FallbackConfig{})

	got, err := f.r.SearchConcepts(context.Background(), source.Query{Text: "x"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "Live", got[0].DisplayName)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.m.Substitutions.WithLabelValues("search_concepts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.SourceRequests.WithLabelValues("search_concepts", "ok")))
}

func TestCollection_LiveNilBecomesEmpty(t *testing.T) {
	f := newFixture(t, &stubLive{}, types.FallbackConfig{})

	got, err := f.r.SearchConcepts(context.Background(), source.Query{Text: "x"}, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollection_UnavailableSubstitutes(t *testing.T) {
	f := newFixture(t, &stubLive{err: errDown}, types.FallbackConfig{FailureThreshold: 100})

	got, err := f.r.SearchConcepts(context.Background(), source.Query{Text: "coral"}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Coral Reef Ecology", got[0].DisplayName)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.Substitutions.WithLabelValues("search_concepts")))
	entries := f.logs.FilterMessage("serving offline data").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "search_concepts", entries[0].ContextMap()["operation"])
}

func TestCollection_NeverNil(t *testing.T) {
	f := newFixture(t, &stubLive{err: errDown}, types.FallbackConfig{FailureThreshold: 100})
	ctx := context.Background()

	authors, err := f.r.SearchAuthors(ctx, source.Query{Text: "nobody at all"}, 5)
	require.NoError(t, err)
	assert.NotNil(t, authors)

	insts, err := f.r.SearchInstitutions(ctx, source.Query{}, 5)
	require.NoError(t, err)
	assert.NotNil(t, insts)

	works, err := f.r.ListWorks(ctx, source.WorksFilter{AuthorID: "A0"}, 5)
	require.NoError(t, err)
	assert.NotNil(t, works)
}

// --- single records ---

func TestRecord_Substitutes(t *testing.T) {
	f := newFixture(t, &stubLive{err: errDown}, types.FallbackConfig{FailureThreshold: 100})

	c, err := f.r.Concept(context.Background(), "T101")
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning", c.DisplayName)

	i, err := f.r.Institution(context.Background(), "I4200000001")
	require.NoError(t, err)
	assert.Equal(t, "Stanford", i.City)
}

func TestRecord_NotFoundAnywhere(t *testing.T) {
	f := newFixture(t, &stubLive{err: errDown}, types.FallbackConfig{FailureThreshold: 100})

	_, err := f.r.Author(context.Background(), "A0")
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.False(t, source.IsUnavailable(err))
}

func TestRecord_LiveNotFoundIsNotASubstitution(t *testing.T) {
	f := newFixture(t, &stubLive{}, types.FallbackConfig{})

	a, err := f.r.Author(context.Background(), feiFeiLi)
	require.NoError(t, err)
	assert.Equal(t, "Fei-Fei Li", a.DisplayName)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.m.Substitutions.WithLabelValues("author")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.SourceRequests.WithLabelValues("author", "not_found")))
}

// --- breaker ---

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	f := newFixture(t, &stubLive{err: errDown}, types.FallbackConfig{FailureThreshold: 2, OpenTimeout: time.Minute})
	ctx := context.Background()

	for range 5 {
		_, err := f.r.Author(ctx, feiFeiLi)
		require.NoError(t, err, "offline corpus answers")
	}

	assert.Equal(t, int32(2), f.live.calls.Load(), "open breaker short-circuits the live source")
	assert.Equal(t, 3.0, testutil.ToFloat64(f.m.SourceRequests.WithLabelValues("author", "rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.m.BreakerState.WithLabelValues("live-source")))
	assert.Equal(t, 5.0, testutil.ToFloat64(f.m.Substitutions.WithLabelValues("author")))
	assert.NotEmpty(t, f.logs.FilterMessage("circuit breaker state change").All())
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	f := newFixture(t, &stubLive{}, types.FallbackConfig{FailureThreshold: 1})
	ctx := context.Background()

	for range 3 {
		_, _ = f.r.Author(ctx, "A0")
	}
	assert.Equal(t, int32(3), f.live.calls.Load())
	assert.Equal(t, 0.0, testutil.ToFloat64(f.m.BreakerState.WithLabelValues("live-source")))
}

// --- profile records ---

func TestProfileRecords_Live(t *testing.T) {
	live := &stubLive{
		authors: map[string]types.AuthorRecord{"A1": {ID: "A1", DisplayName: "Live Author"}},
		works:   []types.WorkRecord{{ID: "W1"}},
	}
	f := newFixture(t, live, types.FallbackConfig{})

	got := f.r.ProfileRecords(context.Background(), "A1", 10)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Live Author", got.Author.DisplayName)
	assert.Len(t, got.Works, 1)
	assert.Equal(t, OriginLive, got.Origin)
}

func TestProfileRecords_WorksFailureUsesOfflineForBoth(t *testing.T) {
	live := &stubLive{
		authors:  map[string]types.AuthorRecord{feiFeiLi: {ID: feiFeiLi, DisplayName: "Live Name"}},
		worksErr: errDown,
	}
	f := newFixture(t, live, types.FallbackConfig{FailureThreshold: 100})

	got := f.r.ProfileRecords(context.Background(), feiFeiLi, 200)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Fei-Fei Li", got.Author.DisplayName, "summary comes from the same origin as the works")
	assert.Len(t, got.Works, 11)
	assert.Equal(t, OriginOffline, got.Origin)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.Substitutions.WithLabelValues("profile_records")))
}

func TestProfileRecords_LiveAuthorUnknownOffline(t *testing.T) {
	live := &stubLive{
		authors:  map[string]types.AuthorRecord{"A999": {ID: "A999", DisplayName: "Only Live"}},
		worksErr: errDown,
	}
	f := newFixture(t, live, types.FallbackConfig{FailureThreshold: 100})

	got := f.r.ProfileRecords(context.Background(), "A999", 200)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Only Live", got.Author.DisplayName)
	assert.NotNil(t, got.Works)
	assert.Empty(t, got.Works)
}

func TestProfileRecords_Unresolvable(t *testing.T) {
	f := newFixture(t, &stubLive{err: errDown}, types.FallbackConfig{FailureThreshold: 100})

	got := f.r.ProfileRecords(context.Background(), "A0", 200)
	assert.Nil(t, got.Author)
	assert.NotNil(t, got.Works)
}

// --- trend counts ---

func TestTrendCounts_Live(t *testing.T) {
	live := &stubLive{counts: []types.GroupCount{{Key: "C1", Count: 3}}}
	f := newFixture(t, live, types.FallbackConfig{})
	w := trend.NewWindows(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), 6)

	got, err := f.r.TrendCounts(context.Background(), source.KindConcept, w)
	require.NoError(t, err)
	assert.Equal(t, OriginLive, got.Origin)
	assert.Len(t, got.Recent, 1)
	assert.Equal(t, int32(2), live.calls.Load())
}

func TestTrendCounts_SubstitutesWholesale(t *testing.T) {
	f := newFixture(t, &stubLive{err: errDown}, types.FallbackConfig{FailureThreshold: 100})
	w := trend.NewWindows(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), 6)

	got, err := f.r.TrendCounts(context.Background(), source.KindAuthor, w)
	require.NoError(t, err)
	assert.Equal(t, OriginOffline, got.Origin)
	assert.Len(t, got.Recent, 10)
	assert.Len(t, got.Previous, 10)

	_, err = f.r.TrendCounts(context.Background(), source.KindWork, w)
	assert.ErrorIs(t, err, source.ErrUnsupported)
}

// --- offline only ---

func TestOfflineOnly(t *testing.T) {
	f := newFixture(t, nil, types.FallbackConfig{})
	assert.Equal(t, "offline", f.r.Name())

	a, err := f.r.Author(context.Background(), feiFeiLi)
	require.NoError(t, err)
	assert.Equal(t, "Fei-Fei Li", a.DisplayName)

	got := f.r.ProfileRecords(context.Background(), feiFeiLi, 5)
	assert.Len(t, got.Works, 5)
	assert.Equal(t, OriginOffline, got.Origin)

	assert.Empty(t, f.logs.FilterMessage("serving offline data").All(), "offline-only is not a substitution")
}
