// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes the collaboration compatibility of two research
// profiles as four weighted sub-scores plus supporting evidence.
//
// Scoring never fails. Missing institutions, undefined median years and empty
// profiles each degrade to a zero sub-score.
package score

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/pdiddy/collab-finder/internal/graph"
	"github.com/pdiddy/collab-finder/pkg/types"
)

// Sub-score weights of the overall score.
const (
	WeightTopic       = 0.40
	WeightCoauthor    = 0.30
	WeightInstitution = 0.20
	WeightRecency     = 0.10
)

const (
	overlapEvidence  = 5
	alignmentPool    = 10
	maxAligned       = 5
	maxSharedAuthors = 5
	yearPenalty      = 12.5
)

// Scorer compares profiles. The zero value uses a BFS depth of 6.
type Scorer struct {
	MaxDepth int
}

// Score compares user with target. A nil profile is scored as empty.
func (s Scorer) Score(user, target *types.ResearchProfile) (types.CompatibilityBreakdown, types.Evidence) {
	user, target = orEmpty(user), orEmpty(target)

	ev := types.Evidence{
		OverlappingConcepts: []string{},
		ConceptWeights:      []types.OverlapConcept{},
		SharedCoauthors:     []string{},
		CoauthorPath:        []string{},
		AlignedPublications: []types.AlignedPublication{},
		MedianYears:         types.MedianYears{User: user.MedianYear, Target: target.MedianYear},
	}

	var b types.CompatibilityBreakdown

	b.TopicSimilarity = percent(Cosine(user.ConceptCounts, target.ConceptCounts))
	overlap := overlapping(user, target)
	for _, o := range topBy(overlap, overlapEvidence, func(o types.OverlapConcept) float64 {
		return min(o.UserWeight, o.TargetWeight)
	}) {
		ev.OverlappingConcepts = append(ev.OverlappingConcepts, o.DisplayName)
		ev.ConceptWeights = append(ev.ConceptWeights, o)
	}
	ev.AlignedPublications = aligned(target, topBy(overlap, alignmentPool, func(o types.OverlapConcept) float64 {
		return o.UserWeight + o.TargetWeight
	}))

	d := graph.ShortestDistance(target.CoauthorGraph, user.CoauthorGraph, target.AuthorID, user.AuthorID, s.MaxDepth)
	b.CoauthorDistance = graph.Score(d)
	if d.Reached {
		ev.CoauthorPath = d.Path
	}
	ev.SharedCoauthors = sharedCoauthors(user, target)

	b.InstitutionProximity = Institution(user.Institution, target.Institution)
	b.RecencyAlignment = Recency(user.MedianYear, target.MedianYear)
	b.Overall = Overall(b)
	return b, ev
}

func orEmpty(p *types.ResearchProfile) *types.ResearchProfile {
	if p == nil {
		return &types.ResearchProfile{}
	}
	return p
}

// Cosine returns the cosine similarity of two sparse vectors, or 0 when
// either has no positive magnitude.
func Cosine(a, b map[string]float64) float64 {
	var dot, na, nb float64
	for id, x := range a {
		na += x * x
		if y, ok := b[id]; ok {
			dot += x * y
		}
	}
	for _, y := range b {
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func percent(sim float64) int {
	return int(math.Round(min(max(sim, 0), 1) * 100))
}

// overlapping lists the concepts present in both profiles, ordered by id.
func overlapping(user, target *types.ResearchProfile) []types.OverlapConcept {
	var out []types.OverlapConcept
	for id, uw := range user.ConceptCounts {
		tw, ok := target.ConceptCounts[id]
		if !ok {
			continue
		}
		out = append(out, types.OverlapConcept{
			ConceptID:    id,
			DisplayName:  conceptName(id, user, target),
			UserWeight:   uw,
			TargetWeight: tw,
		})
	}
	slices.SortFunc(out, func(a, b types.OverlapConcept) int { return cmp.Compare(a.ConceptID, b.ConceptID) })
	return out
}

func conceptName(id string, profiles ...*types.ResearchProfile) string {
	for _, p := range profiles {
		if name := p.ConceptNames[id]; name != "" {
			return name
		}
	}
	return id
}

// topBy returns up to n entries with the highest key, ties by concept id.
func topBy(in []types.OverlapConcept, n int, key func(types.OverlapConcept) float64) []types.OverlapConcept {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b types.OverlapConcept) int {
		return cmp.Or(cmp.Compare(key(b), key(a)), cmp.Compare(a.ConceptID, b.ConceptID))
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// aligned picks target works tagged with any of the pooled concepts, newest
// first.
func aligned(target *types.ResearchProfile, pool []types.OverlapConcept) []types.AlignedPublication {
	out := []types.AlignedPublication{}
	if len(pool) == 0 {
		return out
	}
	names := make(map[string]string, len(pool))
	for _, o := range pool {
		names[o.ConceptID] = o.DisplayName
	}

	var matches []types.WorkSummary
	for _, w := range target.Works {
		for _, id := range w.ConceptIDs {
			if _, ok := names[id]; ok {
				matches = append(matches, w)
				break
			}
		}
	}
	slices.SortStableFunc(matches, func(a, b types.WorkSummary) int { return cmp.Compare(b.Year, a.Year) })
	if len(matches) > maxAligned {
		matches = matches[:maxAligned]
	}

	for _, w := range matches {
		pub := types.AlignedPublication{Title: w.Title, Year: w.Year, MatchedConcepts: []string{}}
		for _, id := range w.ConceptIDs {
			if name, ok := names[id]; ok {
				pub.MatchedConcepts = append(pub.MatchedConcepts, name)
			}
		}
		out = append(out, pub)
	}
	return out
}

// sharedCoauthors returns up to five names of collaborators both profiles
// list, sorted by name. The two subjects themselves are excluded.
func sharedCoauthors(user, target *types.ResearchProfile) []string {
	names := []string{}
	for id, name := range user.Coauthors {
		if id == user.AuthorID || id == target.AuthorID {
			continue
		}
		if _, ok := target.Coauthors[id]; !ok {
			continue
		}
		if name == "" || name == id {
			name = cmp.Or(target.Coauthors[id], id)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	if len(names) > maxSharedAuthors {
		names = names[:maxSharedAuthors]
	}
	return names
}

// Institution scores institutional proximity: same id 100, same country 80,
// same type 60, both known but unrelated 40, either unknown 0.
func Institution(a, b *types.Institution) int {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	switch {
	case a.ID != "" && a.ID == b.ID:
		return 100
	case sameField(a.CountryCode, b.CountryCode):
		return 80
	case sameField(a.Type, b.Type):
		return 60
	default:
		return 40
	}
}

func sameField(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

// Recency scores how close the two median years are, 12.5 points per year of
// difference. Either median missing scores 0.
func Recency(user, target *int) int {
	if user == nil || target == nil {
		return 0
	}
	diff := math.Abs(float64(*user - *target))
	return int(math.Round(max(0, 100-yearPenalty*diff)))
}

// Overall combines the sub-scores with their weights, rounded and clamped to
// [0,100].
func Overall(b types.CompatibilityBreakdown) int {
	v := WeightTopic*float64(b.TopicSimilarity) +
		WeightCoauthor*float64(b.CoauthorDistance) +
		WeightInstitution*float64(b.InstitutionProximity) +
		WeightRecency*float64(b.RecencyAlignment)
	return min(max(int(math.Round(v)), 0), 100)
}
