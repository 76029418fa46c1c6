// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine answers the requests collab-finder serves: compatibility
// between two researchers, trending topics and scientists, profiles,
// co-authorship networks and record lookups. Every request reads through the
// fallback resolver, so only a missing profile subject surfaces as an error.
package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/collab-finder/internal/fallback"
	"github.com/pdiddy/collab-finder/internal/logging"
	"github.com/pdiddy/collab-finder/internal/metrics"
	"github.com/pdiddy/collab-finder/internal/network"
	"github.com/pdiddy/collab-finder/internal/profile"
	"github.com/pdiddy/collab-finder/internal/score"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/internal/trend"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// Search limits.
const (
	DefaultSearchLimit    = 10
	MaxSearchLimit        = 50
	DefaultByConceptLimit = 50
)

// ErrEmptyQuery is returned by searches without search text.
var ErrEmptyQuery = errors.New("search text is required")

// Engine serves requests. It is safe for concurrent use.
type Engine struct {
	resolver *fallback.Resolver
	builder  profile.Builder
	scorer   score.Scorer
	analyzer *trend.Analyzer
	cfg      types.Config
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the base logger; each request derives a child carrying its
// request id.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = logging.OrNop(l) }
}

// WithMetrics sets the instruments used by trend enrichment.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source used to place trend windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine reading through r.
func New(r *fallback.Resolver, cfg types.Config, opts ...Option) *Engine {
	e := &Engine{
		resolver: r,
		cfg:      cfg,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.builder = profile.Builder{
		MaxWorks:          cmp.Or(cfg.Profile.MaxWorks, types.DefaultMaxWorks),
		MaxAuthorsPerWork: cmp.Or(cfg.Profile.MaxAuthorsPerWork, types.DefaultMaxAuthorsPerWork),
	}
	e.scorer = score.Scorer{MaxDepth: cmp.Or(cfg.Score.MaxDepth, types.DefaultMaxDepth)}
	e.analyzer = &trend.Analyzer{
		Source:  r,
		Workers: cmp.Or(cfg.Trend.Workers, types.DefaultTrendWorkers),
		Log:     e.log,
		Metrics: e.metrics,
	}
	return e
}

func (e *Engine) request(op string) *zap.Logger {
	return e.log.With(zap.String("request_id", uuid.NewString()), zap.String("op", op))
}

// Compatibility scores targetID against userID. An empty userID compares
// against the configured default user. Both profiles are built concurrently,
// each from whichever origin could supply it.
func (e *Engine) Compatibility(ctx context.Context, userID, targetID string) (*types.CompatibilityResult, error) {
	userID = cmp.Or(source.CanonicalID(userID), e.cfg.Engine.DefaultUserID, types.DefaultUserID)
	targetID = source.CanonicalID(targetID)
	log := e.request("compatibility").With(zap.String("user_id", userID), zap.String("target_id", targetID))
	if targetID == "" {
		return nil, fmt.Errorf("compatibility: no target author: %w", profile.ErrProfileUnavailable)
	}

	var user, target *types.ResearchProfile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = e.profile(gctx, log, userID)
		return err
	})
	g.Go(func() error {
		var err error
		target, err = e.profile(gctx, log, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	breakdown, evidence := e.scorer.Score(user, target)
	log.Info("compatibility scored",
		zap.Int("overall", breakdown.Overall),
		zap.Int("topic", breakdown.TopicSimilarity),
		zap.Int("coauthor", breakdown.CoauthorDistance),
		zap.Int("institution", breakdown.InstitutionProximity),
		zap.Int("recency", breakdown.RecencyAlignment),
	)
	return &types.CompatibilityResult{
		UserID:    userID,
		TargetID:  targetID,
		Breakdown: breakdown,
		Evidence:  evidence,
	}, nil
}

// Profile builds the research profile of authorID.
func (e *Engine) Profile(ctx context.Context, authorID string) (*types.ResearchProfile, error) {
	id := source.CanonicalID(authorID)
	return e.profile(ctx, e.request("profile").With(zap.String("author_id", id)), id)
}

func (e *Engine) profile(ctx context.Context, log *zap.Logger, authorID string) (*types.ResearchProfile, error) {
	if authorID == "" {
		return nil, fmt.Errorf("profile: no author id: %w", profile.ErrProfileUnavailable)
	}
	recs := e.resolver.ProfileRecords(ctx, authorID, e.builder.MaxWorks)
	b := e.builder
	b.Log = log
	p, err := b.Build(recs.Author, recs.Works)
	if err != nil {
		log.Warn("profile unavailable", zap.String("author_id", authorID))
		return nil, fmt.Errorf("profile %s: %w", authorID, err)
	}
	log.Debug("profile ready",
		zap.String("author_id", authorID),
		zap.String("origin", string(recs.Origin)),
		zap.Int("works", len(p.Works)),
	)
	return p, nil
}

// Trending ranks topics and scientists by growth between the two most recent
// windows. Each list independently uses live or stored counts. A non-positive
// limit uses the configured default.
func (e *Engine) Trending(ctx context.Context, limit int) (*types.TrendingResult, error) {
	log := e.request("trending")
	limit = trend.ClampLimit(cmp.Or(max(limit, 0), e.cfg.Trend.Limit))
	w := trend.NewWindows(e.now(), e.cfg.Trend.WindowMonths)

	res := &types.TrendingResult{Recent: w.Recent, Previous: w.Previous}
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range []source.Kind{source.KindConcept, source.KindAuthor} {
		g.Go(func() error {
			counts, err := e.resolver.TrendCounts(gctx, kind, w)
			if err != nil {
				return err
			}
			entries, err := e.analyzer.Rank(gctx, kind, counts.Recent, counts.Previous, limit)
			if err != nil {
				return err
			}
			log.Debug("trend ranked",
				zap.String("kind", string(kind)),
				zap.String("origin", string(counts.Origin)),
				zap.Int("entries", len(entries)),
			)
			if kind == source.KindConcept {
				res.Topics = entries
			} else {
				res.Scientists = entries
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}
	return res, nil
}

// AuthorNetwork builds the co-authorship network of one author's works.
// limitWorks is clamped to [1, 200].
func (e *Engine) AuthorNetwork(ctx context.Context, authorID string, limitWorks int) (types.Network, error) {
	id := source.CanonicalID(authorID)
	if id == "" {
		return types.Network{}, fmt.Errorf("author network: %w", ErrEmptyQuery)
	}
	e.request("author_network").Debug("building network", zap.String("author_id", id))
	works, _ := e.resolver.ListWorks(ctx, source.WorksFilter{AuthorID: id}, network.ClampLimitWorks(limitWorks))
	return network.Build(works, id), nil
}

// TopicNetwork builds the co-authorship network of works tagged with a
// concept. limitWorks is clamped to [1, 200].
func (e *Engine) TopicNetwork(ctx context.Context, conceptID string, limitWorks int) (types.Network, error) {
	id := source.CanonicalID(conceptID)
	if id == "" {
		return types.Network{}, fmt.Errorf("topic network: %w", ErrEmptyQuery)
	}
	e.request("topic_network").Debug("building network", zap.String("concept_id", id))
	works, _ := e.resolver.ListWorks(ctx, source.WorksFilter{ConceptID: id}, network.ClampLimitWorks(limitWorks))
	return network.Build(works, ""), nil
}

// Author returns one author summary.
func (e *Engine) Author(ctx context.Context, authorID string) (types.AuthorRecord, error) {
	return e.resolver.Author(ctx, source.CanonicalID(authorID))
}

func searchLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxSearchLimit)
}

// SearchConcepts finds concepts by name or description.
func (e *Engine) SearchConcepts(ctx context.Context, text string, limit int) ([]types.ConceptRecord, error) {
	if text == "" {
		return nil, ErrEmptyQuery
	}
	return e.resolver.SearchConcepts(ctx, source.Query{Text: text}, searchLimit(limit, DefaultSearchLimit))
}

// SearchAuthors finds authors by name.
func (e *Engine) SearchAuthors(ctx context.Context, text string, limit int) ([]types.AuthorRecord, error) {
	if text == "" {
		return nil, ErrEmptyQuery
	}
	return e.resolver.SearchAuthors(ctx, source.Query{Text: text}, searchLimit(limit, DefaultSearchLimit))
}

// SearchInstitutions finds institutions by name.
func (e *Engine) SearchInstitutions(ctx context.Context, text string, limit int) ([]types.InstitutionRecord, error) {
	if text == "" {
		return nil, ErrEmptyQuery
	}
	return e.resolver.SearchInstitutions(ctx, source.Query{Text: text}, searchLimit(limit, DefaultSearchLimit))
}

// AuthorsByConcept lists the most prolific authors tagged with a concept.
func (e *Engine) AuthorsByConcept(ctx context.Context, conceptID string, limit int) ([]types.AuthorRecord, error) {
	id := source.CanonicalID(conceptID)
	if id == "" {
		return nil, ErrEmptyQuery
	}
	return e.resolver.SearchAuthors(ctx, source.Query{ConceptID: id}, searchLimit(limit, DefaultByConceptLimit))
}

// InstitutionsByConcept lists the most active institutions tagged with a
// concept.
func (e *Engine) InstitutionsByConcept(ctx context.Context, conceptID string, limit int) ([]types.InstitutionRecord, error) {
	id := source.CanonicalID(conceptID)
	if id == "" {
		return nil, ErrEmptyQuery
	}
	return e.resolver.SearchInstitutions(ctx, source.Query{ConceptID: id}, searchLimit(limit, DefaultByConceptLimit))
}
