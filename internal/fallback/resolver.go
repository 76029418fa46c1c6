// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fallback wraps the live record source so that downstream
// components never observe a missing-data state. Every live call runs through
// a circuit breaker; when the call fails (or the breaker is open) the result
// is substituted from the offline corpus, shaped identically to live records.
//
// Collection calls never fail and never return nil. Single-record calls fail
// only with source.ErrNotFound, when neither side holds the record.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/collab-finder/internal/logging"
	"github.com/pdiddy/collab-finder/internal/metrics"
	"github.com/pdiddy/collab-finder/internal/offline"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// Origin tells which side served a result.
type Origin string

const (
	OriginLive    Origin = "live"
	OriginOffline Origin = "offline"
)

const (
	breakerName             = "live-source"
	defaultFailureThreshold = 3
	defaultOpenTimeout      = 30 * time.Second
)

// Resolver substitutes offline data for failed live calls. It implements
// source.Source and is safe for concurrent use.
type Resolver struct {
	live    source.Source
	corpus  *offline.Corpus
	breaker *gobreaker.CircuitBreaker[any]
	metrics *metrics.Metrics
	log     *zap.Logger

	failureThreshold uint32
	openTimeout      time.Duration
}

var _ source.Source = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for substitution warnings.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.log = logging.OrNop(l) }
}

// WithMetrics sets the instruments updated on every live call.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithBreaker configures when the breaker opens and how long it stays open.
// Zero values keep the defaults (3 consecutive failures, 30s).
func WithBreaker(cfg types.FallbackConfig) Option {
	return func(r *Resolver) {
		if cfg.FailureThreshold > 0 {
			r.failureThreshold = cfg.FailureThreshold
		}
		if cfg.OpenTimeout > 0 {
			r.openTimeout = cfg.OpenTimeout
		}
	}
}

// New creates a Resolver over live (nil for offline-only operation) and the
// offline corpus, which must not be nil.
func New(live source.Source, corpus *offline.Corpus, opts ...Option) *Resolver {
	r := &Resolver{
		live:             live,
		corpus:           corpus,
		log:              zap.NewNop(),
		failureThreshold: defaultFailureThreshold,
		openTimeout:      defaultOpenTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	r.breaker = r.newBreaker()
	return r
}

func (r *Resolver) newBreaker() *gobreaker.CircuitBreaker[any] {
	threshold := r.failureThreshold
	r.metrics.BreakerState.WithLabelValues(breakerName).Set(float64(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     r.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			r.log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, source.ErrNotFound) ||
				errors.Is(err, source.ErrUnsupported) ||
				errors.Is(err, context.Canceled)
		},
	})
}

// Name returns the identifier of the wrapped live source.
func (r *Resolver) Name() string {
	if r.live == nil {
		return offline.Name
	}
	return r.live.Name()
}

// Corpus returns the offline corpus.
func (r *Resolver) Corpus() *offline.Corpus { return r.corpus }

// liveCall runs fn against the live source through the breaker and records
// the outcome. It reports source.ErrUnavailable when there is no live source.
func liveCall[T any](ctx context.Context, r *Resolver, op string, fn func(context.Context, source.Source) (T, error)) (T, error) {
	var zero T
	if r.live == nil {
		return zero, source.Unavailable(op, errors.New("no live source configured"))
	}

	res, err := r.breaker.Execute(func() (any, error) {
		return fn(ctx, r.live)
	})
	r.metrics.SourceRequests.WithLabelValues(op, outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, source.Unavailable(op, err)
		}
		return zero, err
	}
	return res.(T), nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, source.ErrNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "unavailable"
	}
}

// substituted logs and counts one offline substitution. Offline-only
// operation is not a substitution and stays quiet.
func (r *Resolver) substituted(op string, cause error) {
	if r.live == nil {
		return
	}
	r.metrics.Substitutions.WithLabelValues(op).Inc()
	r.log.Warn("serving offline data",
		zap.String("operation", op),
		zap.String("live_source", r.live.Name()),
		zap.Error(cause),
	)
}

// collection resolves a collection-shaped call: live, else offline, else an
// empty slice.
func collection[T any](ctx context.Context, r *Resolver, op string, fn func(context.Context, source.Source) ([]T, error)) ([]T, Origin) {
	out, err := liveCall(ctx, r, op, fn)
	if err == nil {
		if out == nil {
			out = []T{}
		}
		return out, OriginLive
	}
	r.substituted(op, err)

	out, oerr := fn(ctx, r.corpus)
	if oerr != nil || out == nil {
		if oerr != nil {
			r.log.Warn("offline corpus could not answer", zap.String("operation", op), zap.Error(oerr))
		}
		return []T{}, OriginOffline
	}
	return out, OriginOffline
}

// record resolves a single-record call: live, else offline, else
// source.ErrNotFound.
func record[T any](ctx context.Context, r *Resolver, op, id string, fn func(context.Context, source.Source) (T, error)) (T, Origin, error) {
	out, err := liveCall(ctx, r, op, fn)
	if err == nil {
		return out, OriginLive, nil
	}
	if !source.IsNotFound(err) {
		r.substituted(op, err)
	}

	out, oerr := fn(ctx, r.corpus)
	if oerr == nil {
		return out, OriginOffline, nil
	}
	var zero T
	return zero, OriginOffline, fmt.Errorf("%s %s: %w", op, id, source.ErrNotFound)
}

// SearchConcepts never fails.
func (r *Resolver) SearchConcepts(ctx context.Context, q source.Query, limit int) ([]types.ConceptRecord, error) {
	out, _ := collection(ctx, r, "search_concepts", func(ctx context.Context, s source.Source) ([]types.ConceptRecord, error) {
		return s.SearchConcepts(ctx, q, limit)
	})
	return out, nil
}

// SearchAuthors never fails.
func (r *Resolver) SearchAuthors(ctx context.Context, q source.Query, limit int) ([]types.AuthorRecord, error) {
	out, _ := collection(ctx, r, "search_authors", func(ctx context.Context, s source.Source) ([]types.AuthorRecord, error) {
		return s.SearchAuthors(ctx, q, limit)
	})
	return out, nil
}

// SearchInstitutions never fails.
func (r *Resolver) SearchInstitutions(ctx context.Context, q source.Query, limit int) ([]types.InstitutionRecord, error) {
	out, _ := collection(ctx, r, "search_institutions", func(ctx context.Context, s source.Source) ([]types.InstitutionRecord, error) {
		return s.SearchInstitutions(ctx, q, limit)
	})
	return out, nil
}

// ListWorks never fails.
func (r *Resolver) ListWorks(ctx context.Context, filter source.WorksFilter, limit int) ([]types.WorkRecord, error) {
	out, _ := collection(ctx, r, "list_works", func(ctx context.Context, s source.Source) ([]types.WorkRecord, error) {
		return s.ListWorks(ctx, filter, limit)
	})
	return out, nil
}

// GroupedCounts serves live counts, else counts computed from the corpus
// works. Trend ranking uses TrendCounts instead, which substitutes the stored
// trend lists wholesale.
func (r *Resolver) GroupedCounts(ctx context.Context, kind source.Kind, window types.Window) ([]types.GroupCount, error) {
	if kind != source.KindConcept && kind != source.KindAuthor {
		return nil, fmt.Errorf("grouped counts by %s: %w", kind, source.ErrUnsupported)
	}
	out, _ := collection(ctx, r, "grouped_counts", func(ctx context.Context, s source.Source) ([]types.GroupCount, error) {
		return s.GroupedCounts(ctx, kind, window)
	})
	return out, nil
}

// Concept returns the live concept, else the offline one.
func (r *Resolver) Concept(ctx context.Context, id string) (types.ConceptRecord, error) {
	out, _, err := record(ctx, r, "concept", id, func(ctx context.Context, s source.Source) (types.ConceptRecord, error) {
		return s.Concept(ctx, id)
	})
	return out, err
}

// Author returns the live author summary, else the offline one.
func (r *Resolver) Author(ctx context.Context, id string) (types.AuthorRecord, error) {
	out, _, err := record(ctx, r, "author", id, func(ctx context.Context, s source.Source) (types.AuthorRecord, error) {
		return s.Author(ctx, id)
	})
	return out, err
}

// Institution returns the live institution, else the offline one.
func (r *Resolver) Institution(ctx context.Context, id string) (types.InstitutionRecord, error) {
	out, _, err := record(ctx, r, "institution", id, func(ctx context.Context, s source.Source) (types.InstitutionRecord, error) {
		return s.Institution(ctx, id)
	})
	return out, err
}
