// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph merges co-author adjacency maps and measures shortest
// collaboration distance between two researchers.
package graph

import (
	"github.com/pdiddy/collab-finder/pkg/types"
)

// Distance is the outcome of a bounded shortest-path search.
type Distance struct {
	// Length is the number of hops; meaningless when Reached is false.
	Length int

	// Reached reports whether target was found within the depth bound.
	Reached bool

	// Path lists the ids from origin to target inclusive. Empty when not reached.
	Path []string
}

// Merge returns the undirected union of a and b. An edge present in both
// keeps the larger weight. Neither input is modified.
func Merge(a, b types.CoauthorGraph) types.CoauthorGraph {
	out := make(types.CoauthorGraph, len(a)+len(b))
	for _, g := range []types.CoauthorGraph{a, b} {
		for from, adj := range g {
			for to, w := range adj {
				if from == to || from == "" || to == "" {
					continue
				}
				setMax(out, from, to, w)
				setMax(out, to, from, w)
			}
		}
	}
	return out
}

func setMax(g types.CoauthorGraph, from, to string, w int) {
	adj, ok := g[from]
	if !ok {
		adj = make(map[string]int)
		g[from] = adj
	}
	if cur, ok := adj[to]; !ok || w > cur {
		adj[to] = w
	}
}

// ShortestDistance runs a breadth-first search from origin to target over the
// union of a and b, stopping after maxDepth hops (default 6 when maxDepth is
// not positive). Neighbors are expanded in ascending id order so the returned
// path is deterministic.
func ShortestDistance(a, b types.CoauthorGraph, origin, target string, maxDepth int) Distance {
	if maxDepth <= 0 {
		maxDepth = types.DefaultMaxDepth
	}
	if origin == "" || target == "" {
		return Distance{}
	}
	if origin == target {
		return Distance{Length: 0, Reached: true, Path: []string{origin}}
	}

	g := Merge(a, b)
	parent := map[string]string{origin: ""}
	frontier := []string{origin}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, n := range g.Neighbors(id) {
				if _, seen := parent[n]; seen {
					continue
				}
				parent[n] = id
				if n == target {
					return Distance{Length: depth, Reached: true, Path: walkBack(parent, n)}
				}
				next = append(next, n)
			}
		}
		frontier = next
	}
	return Distance{}
}

func walkBack(parent map[string]string, end string) []string {
	var rev []string
	for id := end; id != ""; id = parent[id] {
		rev = append(rev, id)
	}
	path := make([]string, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}

// Score maps a distance to the co-author sub-score.
func Score(d Distance) int {
	if !d.Reached {
		return 0
	}
	switch {
	case d.Length <= 1:
		return 100
	case d.Length == 2:
		return 80
	case d.Length == 3:
		return 55
	case d.Length == 4:
		return 35
	default:
		return 15
	}
}
