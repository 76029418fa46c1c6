// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/collab-finder/pkg/types"
)

func year(v int) *int { return &v }

func profile(id string, concepts map[string]float64) *types.ResearchProfile {
	names := make(map[string]string, len(concepts))
	for c := range concepts {
		names[c] = c + " name"
	}
	return &types.ResearchProfile{
		AuthorID:      id,
		ConceptCounts: concepts,
		ConceptNames:  names,
		Coauthors:     map[string]string{},
		CoauthorGraph: types.CoauthorGraph{},
	}
}

// --- cosine ---

func TestCosine(t *testing.T) {
	a := map[string]float64{"ML": 10, "CV": 5}
	b := map[string]float64{"ML": 8, "NLP": 4}

	assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12, "symmetric")
	assert.InDelta(t, 1.0, Cosine(a, a), 1e-12)
	assert.InDelta(t, 0.8, Cosine(a, b), 1e-9)
	assert.Zero(t, Cosine(a, nil))
	assert.Zero(t, Cosine(map[string]float64{"ML": 0}, a))
	assert.Zero(t, Cosine(map[string]float64{"X": 1}, map[string]float64{"Y": 1}))
}

func TestScore_TopicScenario(t *testing.T) {
	user := profile("U", map[string]float64{"ML": 10, "CV": 5})
	target := profile("T", map[string]float64{"ML": 8, "NLP": 4})

	b, ev := Scorer{}.Score(user, target)
	assert.Equal(t, 80, b.TopicSimilarity)
	assert.Equal(t, []string{"ML name"}, ev.OverlappingConcepts)
	require.Len(t, ev.ConceptWeights, 1)
	assert.Equal(t, types.OverlapConcept{ConceptID: "ML", DisplayName: "ML name", UserWeight: 10, TargetWeight: 8}, ev.ConceptWeights[0])
}

func TestScore_OverlapEvidenceCappedByMinWeight(t *testing.T) {
	u := map[string]float64{}
	tg := map[string]float64{}
	for i := range 7 {
		id := fmt.Sprintf("C%d", i)
		u[id] = float64(10 + i)
		tg[id] = float64(i + 1) // min weight is the target side
	}
	_, ev := Scorer{}.Score(profile("U", u), profile("T", tg))

	assert.Equal(t, []string{"C6 name", "C5 name", "C4 name", "C3 name", "C2 name"}, ev.OverlappingConcepts)
}

// --- co-author distance ---

func TestScore_CoauthorDistance(t *testing.T) {
	user := profile("U", nil)
	target := profile("T", nil)
	user.CoauthorGraph.AddEdge("U", "X")
	target.CoauthorGraph.AddEdge("T", "X")
	user.Coauthors["X"] = "Xavier"
	target.Coauthors["X"] = "Xavier"
	user.Coauthors["Y"] = "Yolanda"

	b, ev := Scorer{}.Score(user, target)
	assert.Equal(t, 80, b.CoauthorDistance)
	assert.Equal(t, []string{"T", "X", "U"}, ev.CoauthorPath)
	assert.Equal(t, []string{"Xavier"}, ev.SharedCoauthors)
}

func TestScore_DirectCoauthors(t *testing.T) {
	user := profile("U", nil)
	target := profile("T", nil)
	target.CoauthorGraph.AddEdge("T", "U")

	b, _ := Scorer{}.Score(user, target)
	assert.Equal(t, 100, b.CoauthorDistance)
}

func TestScore_Unreachable(t *testing.T) {
	user := profile("U", nil)
	target := profile("T", nil)
	ids := []string{"T", "A", "B", "C", "D", "E", "F", "U"}
	for i := 0; i+1 < len(ids); i++ {
		target.CoauthorGraph.AddEdge(ids[i], ids[i+1])
	}

	b, ev := Scorer{}.Score(user, target)
	assert.Zero(t, b.CoauthorDistance, "seven hops exceeds the default depth")
	assert.Empty(t, ev.CoauthorPath)

	b, _ = Scorer{MaxDepth: 7}.Score(user, target)
	assert.Equal(t, 15, b.CoauthorDistance)
}

func TestScore_SharedCoauthorsSortedAndCapped(t *testing.T) {
	user := profile("U", nil)
	target := profile("T", nil)
	for _, n := range []string{"Gus", "Bea", "Fay", "Al", "Eve", "Cy", "Dee"} {
		user.Coauthors["id-"+n] = n
		target.Coauthors["id-"+n] = n
	}
	user.Coauthors["T"] = "Target"
	target.Coauthors["U"] = "User"

	_, ev := Scorer{}.Score(user, target)
	assert.Equal(t, []string{"Al", "Bea", "Cy", "Dee", "Eve"}, ev.SharedCoauthors)
}

// --- institution ---

func TestInstitution(t *testing.T) {
	stanford := &types.Institution{ID: "I1", DisplayName: "Stanford", Type: "education", CountryCode: "US"}
	mit := &types.Institution{ID: "I2", DisplayName: "MIT", Type: "education", CountryCode: "us"}
	oxford := &types.Institution{ID: "I3", DisplayName: "Oxford", Type: "Education", CountryCode: "GB"}
	lab := &types.Institution{ID: "I4", DisplayName: "Lab", Type: "company", CountryCode: "DE"}
	bare := &types.Institution{DisplayName: "Somewhere"}

	tests := []struct {
		name string
		a, b *types.Institution
		want int
	}{
		{"same id", stanford, stanford, 100},
		{"same country", stanford, mit, 80},
		{"same type", stanford, oxford, 60},
		{"both present unrelated", stanford, lab, 40},
		{"fields missing on one side", stanford, bare, 40},
		{"one missing", stanford, nil, 0},
		{"both missing", nil, nil, 0},
		{"zero value counts as missing", &types.Institution{}, stanford, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Institution(tt.a, tt.b))
			assert.Equal(t, tt.want, Institution(tt.b, tt.a))
		})
	}
}

// --- recency ---

func TestRecency(t *testing.T) {
	tests := []struct {
		name         string
		user, target *int
		want         int
	}{
		{"equal", year(2019), year(2019), 100},
		{"four apart", year(2020), year(2016), 50},
		{"one apart rounds", year(2020), year(2019), 88},
		{"three apart rounds", year(2013), year(2010), 63},
		{"eight apart", year(2020), year(2012), 0},
		{"far apart", year(1990), year(2020), 0},
		{"user missing", nil, year(2020), 0},
		{"both missing", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recency(tt.user, tt.target))
		})
	}
}

func TestScore_MedianEvidenceKeptWhenOneMissing(t *testing.T) {
	user := profile("U", nil)
	user.MedianYear = year(2018)
	b, ev := Scorer{}.Score(user, profile("T", nil))

	assert.Zero(t, b.RecencyAlignment)
	require.NotNil(t, ev.MedianYears.User)
	assert.Equal(t, 2018, *ev.MedianYears.User)
	assert.Nil(t, ev.MedianYears.Target)
}

// --- overall ---

func TestOverall(t *testing.T) {
	tests := []struct {
		b    types.CompatibilityBreakdown
		want int
	}{
		{types.CompatibilityBreakdown{}, 0},
		{types.CompatibilityBreakdown{TopicSimilarity: 100, CoauthorDistance: 100, InstitutionProximity: 100, RecencyAlignment: 100}, 100},
		{types.CompatibilityBreakdown{TopicSimilarity: 80, CoauthorDistance: 55, InstitutionProximity: 80, RecencyAlignment: 50}, 70},
		{types.CompatibilityBreakdown{TopicSimilarity: 71, CoauthorDistance: 0, InstitutionProximity: 0, RecencyAlignment: 0}, 28},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Overall(tt.b), "%+v", tt.b)
	}
}

func TestScore_EmptyProfilesWellFormed(t *testing.T) {
	cases := []struct {
		name         string
		user, target *types.ResearchProfile
	}{
		{"nil", nil, nil},
		{"empty", &types.ResearchProfile{AuthorID: "U"}, &types.ResearchProfile{AuthorID: "T"}},
		{"one side empty", profile("U", map[string]float64{"ML": 1}), &types.ResearchProfile{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, ev := Scorer{}.Score(tc.user, tc.target)
			assert.GreaterOrEqual(t, b.Overall, 0)
			assert.LessOrEqual(t, b.Overall, 100)
			assert.NotNil(t, ev.OverlappingConcepts)
			assert.NotNil(t, ev.SharedCoauthors)
			assert.NotNil(t, ev.AlignedPublications)
			assert.NotNil(t, ev.CoauthorPath)
		})
	}
}

func TestScore_OverallAlwaysInRange(t *testing.T) {
	user := profile("U", map[string]float64{"ML": 10, "CV": 5})
	user.Institution = &types.Institution{ID: "I1", CountryCode: "US"}
	user.MedianYear = year(2020)
	target := profile("T", map[string]float64{"ML": 10, "CV": 5})
	target.Institution = &types.Institution{ID: "I1", CountryCode: "US"}
	target.MedianYear = year(2020)
	target.CoauthorGraph.AddEdge("T", "U")

	b, _ := Scorer{}.Score(user, target)
	assert.Equal(t, types.CompatibilityBreakdown{
		Overall: 100, TopicSimilarity: 100, CoauthorDistance: 100, InstitutionProximity: 100, RecencyAlignment: 100,
	}, b)
}

// --- aligned publications ---

func TestScore_AlignedPublications(t *testing.T) {
	user := profile("U", map[string]float64{"ML": 5, "CV": 2})
	target := profile("T", map[string]float64{"ML": 4, "CV": 1, "BIO": 9})
	target.Works = []types.WorkSummary{
		{ID: "W1", Title: "Old ML", Year: 2012, ConceptIDs: []string{"ML"}},
		{ID: "W2", Title: "Biology", Year: 2022, ConceptIDs: []string{"BIO"}},
		{ID: "W3", Title: "New vision", Year: 2021, ConceptIDs: []string{"BIO", "CV", "ML"}},
		{ID: "W4", Title: "Mid ML", Year: 2018, ConceptIDs: []string{"ML"}},
		{ID: "W5", Title: "Mid CV", Year: 2018, ConceptIDs: []string{"CV"}},
		{ID: "W6", Title: "Early CV", Year: 2015, ConceptIDs: []string{"CV"}},
		{ID: "W7", Title: "Earliest", Year: 2009, ConceptIDs: []string{"ML"}},
	}

	_, ev := Scorer{}.Score(user, target)
	require.Len(t, ev.AlignedPublications, 5)
	assert.Equal(t, types.AlignedPublication{Title: "New vision", Year: 2021, MatchedConcepts: []string{"CV name", "ML name"}}, ev.AlignedPublications[0])

	titles := make([]string, 0, 5)
	for _, p := range ev.AlignedPublications {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"New vision", "Mid ML", "Mid CV", "Early CV", "Old ML"}, titles)
}

func TestScore_NoOverlapNoAlignedPublications(t *testing.T) {
	user := profile("U", map[string]float64{"ML": 5})
	target := profile("T", map[string]float64{"BIO": 9})
	target.Works = []types.WorkSummary{{ID: "W1", Title: "Biology", Year: 2022, ConceptIDs: []string{"BIO"}}}

	b, ev := Scorer{}.Score(user, target)
	assert.Zero(t, b.TopicSimilarity)
	assert.Empty(t, ev.AlignedPublications)
	assert.Empty(t, ev.OverlappingConcepts)
}

func TestScore_Deterministic(t *testing.T) {
	user := profile("U", map[string]float64{"A": 1, "B": 1, "C": 1, "D": 1, "E": 1, "F": 1})
	target := profile("T", map[string]float64{"A": 1, "B": 1, "C": 1, "D": 1, "E": 1, "F": 1})
	_, first := Scorer{}.Score(user, target)
	for range 10 {
		_, ev := Scorer{}.Score(user, target)
		assert.Equal(t, first, ev)
	}
	assert.Equal(t, []string{"A name", "B name", "C name", "D name", "E name"}, first.OverlappingConcepts)
}
