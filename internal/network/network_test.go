// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package network

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/collab-finder/internal/offline"
	"github.com/pdiddy/collab-finder/internal/source"
	"github.com/pdiddy/collab-finder/pkg/types"
)

func work(id string, authors ...string) types.WorkRecord {
	w := types.WorkRecord{ID: id}
	for _, a := range authors {
		w.Authorships = append(w.Authorships, types.Authorship{AuthorID: a, AuthorName: "Name " + a})
	}
	return w
}

func TestBuild(t *testing.T) {
	works := []types.WorkRecord{
		work("W1", "C", "A", "B"),
		work("W2", "A", "B"),
		work("W3", "D"),
	}
	n := Build(works, "A")

	ids := make([]string, 0, len(n.Nodes))
	for _, node := range n.Nodes {
		ids = append(ids, node.ID)
	}
	assert.Equal(t, []string{"C", "A", "B", "D"}, ids, "first-seen order")

	assert.Equal(t, []types.NetworkLink{
		{Source: "A", Target: "B", Weight: 2},
		{Source: "A", Target: "C", Weight: 1},
		{Source: "B", Target: "C", Weight: 1},
	}, n.Links)

	assert.Equal(t, types.NetworkNode{ID: "A", Name: "Name A", Degree: 3, IsFocus: true}, n.Nodes[1])
	assert.Equal(t, 2, n.Nodes[0].Degree)
	assert.Zero(t, n.Nodes[3].Degree)
	assert.False(t, n.Nodes[3].IsFocus)

	assert.Equal(t, 4, n.Stats.NodeCount)
	assert.Equal(t, 3, n.Stats.LinkCount)
	assert.Equal(t, []types.TopAuthor{
		{ID: "A", Name: "Name A", Degree: 3},
		{ID: "B", Name: "Name B", Degree: 3},
		{ID: "C", Name: "Name C", Degree: 2},
		{ID: "D", Name: "Name D", Degree: 0},
	}, n.Stats.TopAuthors)
}

func TestBuild_DegreeIsSumOfLinkWeights(t *testing.T) {
	works := []types.WorkRecord{
		work("W1", "A", "B", "C", "D"),
		work("W2", "B", "D"),
		work("W3", "A", "D", "E"),
	}
	n := Build(works, "")
	sum := make(map[string]int)
	for _, l := range n.Links {
		assert.Less(t, l.Source, l.Target)
		sum[l.Source] += l.Weight
		sum[l.Target] += l.Weight
	}
	for _, node := range n.Nodes {
		assert.Equal(t, sum[node.ID], node.Degree, node.ID)
	}
}

func TestBuild_SkipsMissingAndDuplicateAuthors(t *testing.T) {
	w := work("W1", "A", "A", "B")
	w.Authorships = append(w.Authorships, types.Authorship{AuthorName: "anonymous"})
	w.Authorships[2].AuthorName = ""

	n := Build([]types.WorkRecord{w}, "")
	require.Len(t, n.Nodes, 2)
	assert.Equal(t, "B", n.Nodes[1].Name, "name defaults to id")
	assert.Equal(t, []types.NetworkLink{{Source: "A", Target: "B", Weight: 1}}, n.Links)
}

func TestBuild_Empty(t *testing.T) {
	n := Build(nil, "A")
	assert.NotNil(t, n.Nodes)
	assert.NotNil(t, n.Links)
	assert.NotNil(t, n.Stats.TopAuthors)
	assert.Zero(t, n.Stats.NodeCount)
}

func TestBuild_TopAuthorsCapped(t *testing.T) {
	var authors []string
	for i := range 15 {
		authors = append(authors, fmt.Sprintf("A%02d", i))
	}
	n := Build([]types.WorkRecord{work("W1", authors...)}, "")
	require.Len(t, n.Stats.TopAuthors, 10)
	assert.Equal(t, "A00", n.Stats.TopAuthors[0].ID, "equal degrees fall back to id order")
	assert.Equal(t, 14, n.Stats.TopAuthors[0].Degree)
	assert.Equal(t, 105, n.Stats.LinkCount)
}

func TestBuild_OfflineAuthor(t *testing.T) {
	corpus, err := offline.Load()
	require.NoError(t, err)
	const feiFei = "https://openalex.org/A1969205032"
	works, err := corpus.ListWorks(context.Background(), source.WorksFilter{AuthorID: feiFei}, 0)
	require.NoError(t, err)

	n := Build(works, feiFei)
	require.NotEmpty(t, n.Nodes)
	focus := 0
	for _, node := range n.Nodes {
		if node.IsFocus {
			focus++
			assert.Equal(t, feiFei, node.ID)
		}
	}
	assert.Equal(t, 1, focus)
	assert.Equal(t, feiFei, n.Stats.TopAuthors[0].ID)
}

func TestClampLimitWorks(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 1}, {0, 1}, {1, 1}, {50, 50}, {200, 200}, {201, 200}, {10000, 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimitWorks(tt.in), "in=%d", tt.in)
	}
}
