// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fallback

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/internal/trend"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// ProfileRecords are the inputs of one profile build. Author is nil when no
// side could supply the summary.
type ProfileRecords struct {
	Author *types.AuthorRecord
	Works  []types.WorkRecord
	Origin Origin
}

// ProfileRecords fetches an author summary and up to limit of their works
// from a single origin, so a profile never mixes live and offline records.
// If either live call fails both come from the corpus; if the corpus does not
// know the author but live supplied the summary, the live summary is kept
// with no works.
func (r *Resolver) ProfileRecords(ctx context.Context, authorID string, limit int) ProfileRecords {
	author, aerr := liveCall(ctx, r, "author", func(ctx context.Context, s source.Source) (types.AuthorRecord, error) {
		return s.Author(ctx, authorID)
	})
	var werr error
	if aerr == nil {
		var works []types.WorkRecord
		works, werr = liveCall(ctx, r, "list_works", func(ctx context.Context, s source.Source) ([]types.WorkRecord, error) {
			return s.ListWorks(ctx, source.WorksFilter{AuthorID: authorID}, limit)
		})
		if werr == nil {
			if works == nil {
				works = []types.WorkRecord{}
			}
			return ProfileRecords{Author: &author, Works: works, Origin: OriginLive}
		}
	}

	cause := aerr
	if cause == nil {
		cause = werr
	}
	if !source.IsNotFound(cause) {
		r.substituted("profile_records", cause)
	}

	off, err := r.corpus.Author(ctx, authorID)
	if err == nil {
		works, _ := r.corpus.ListWorks(ctx, source.WorksFilter{AuthorID: authorID}, limit)
		return ProfileRecords{Author: &off, Works: works, Origin: OriginOffline}
	}

	if aerr == nil {
		r.log.Warn("offline corpus lacks author; using live summary without works",
			zap.String("author_id", authorID))
		return ProfileRecords{Author: &author, Works: []types.WorkRecord{}, Origin: OriginLive}
	}
	return ProfileRecords{Works: []types.WorkRecord{}, Origin: OriginOffline}
}

// TrendCounts holds the grouped counts for both windows of one kind.
type TrendCounts struct {
	Recent   []types.GroupCount
	Previous []types.GroupCount
	Origin   Origin
}

// TrendCounts runs both live grouped-count queries for kind. If either fails
// the corpus' stored trend counts replace them wholesale. Only an unsupported
// kind is an error.
func (r *Resolver) TrendCounts(ctx context.Context, kind source.Kind, w trend.Windows) (TrendCounts, error) {
	if kind != source.KindConcept && kind != source.KindAuthor {
		return TrendCounts{}, fmt.Errorf("trend counts by %s: %w", kind, source.ErrUnsupported)
	}
	live := liveCounter{r: r}
	recent, previous, err := trend.Count(ctx, live, kind, w)
	if err == nil {
		return TrendCounts{Recent: nonNil(recent), Previous: nonNil(previous), Origin: OriginLive}, nil
	}
	r.substituted("trend_counts", err)

	recent, previous, serr := r.corpus.TrendCounts(kind)
	if serr != nil {
		return TrendCounts{}, serr
	}
	return TrendCounts{Recent: nonNil(recent), Previous: nonNil(previous), Origin: OriginOffline}, nil
}

// liveCounter issues grouped-count queries to the live source only.
type liveCounter struct{ r *Resolver }

func (c liveCounter) GroupedCounts(ctx context.Context, kind source.Kind, w types.Window) ([]types.GroupCount, error) {
	return liveCall(ctx, c.r, "grouped_counts", func(ctx context.Context, s source.Source) ([]types.GroupCount, error) {
		return s.GroupedCounts(ctx, kind, w)
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
