// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package network renders a set of works as a co-authorship graph for
// graph-drawing consumers.
package network

import (
	"cmp"
	"slices"

	"github.com/pdiddy/collab-finder/pkg/types"
)

// Work limits accepted by network requests.
const (
	DefaultLimitWorks = 200
	MaxLimitWorks     = 200
	topAuthors        = 10
)

// ClampLimitWorks bounds a requested works count to [1, 200].
func ClampLimitWorks(n int) int {
	return min(max(n, 1), MaxLimitWorks)
}

type pair struct{ a, b string }

// Build links every pair of distinct authors that share a work. Nodes keep
// the order in which authors are first seen; links are sorted by source then
// target with source < target. A node's degree is the sum of the weights of
// its links. focusID marks the node the network was requested for and may be
// empty.
func Build(works []types.WorkRecord, focusID string) types.Network {
	index := make(map[string]int)
	nodes := []types.NetworkNode{}
	weights := make(map[pair]int)
	degrees := make(map[string]int)

	for _, w := range works {
		var ids []string
		for _, a := range w.Authorships {
			if a.AuthorID == "" || slices.Contains(ids, a.AuthorID) {
				continue
			}
			if _, ok := index[a.AuthorID]; !ok {
				index[a.AuthorID] = len(nodes)
				nodes = append(nodes, types.NetworkNode{
					ID:      a.AuthorID,
					Name:    cmp.Or(a.AuthorName, a.AuthorID),
					IsFocus: a.AuthorID == focusID,
				})
			}
			ids = append(ids, a.AuthorID)
		}
		for i := range ids {
			for j := i + 1; j < len(ids); j++ {
				p := pair{ids[i], ids[j]}
				if p.b < p.a {
					p.a, p.b = p.b, p.a
				}
				weights[p]++
				degrees[p.a]++
				degrees[p.b]++
			}
		}
	}

	links := make([]types.NetworkLink, 0, len(weights))
	for p, wt := range weights {
		links = append(links, types.NetworkLink{Source: p.a, Target: p.b, Weight: wt})
	}
	slices.SortFunc(links, func(x, y types.NetworkLink) int {
		return cmp.Or(cmp.Compare(x.Source, y.Source), cmp.Compare(x.Target, y.Target))
	})

	for i := range nodes {
		nodes[i].Degree = degrees[nodes[i].ID]
	}

	ranked := slices.Clone(nodes)
	slices.SortFunc(ranked, func(x, y types.NetworkNode) int {
		return cmp.Or(cmp.Compare(y.Degree, x.Degree), cmp.Compare(x.ID, y.ID))
	})
	top := make([]types.TopAuthor, 0, min(len(ranked), topAuthors))
	for _, n := range ranked[:min(len(ranked), topAuthors)] {
		top = append(top, types.TopAuthor{ID: n.ID, Name: n.Name, Degree: n.Degree})
	}

	return types.Network{
		Nodes: nodes,
		Links: links,
		Stats: types.NetworkStats{
			NodeCount:  len(nodes),
			LinkCount:  len(links),
			TopAuthors: top,
		},
	}
}
