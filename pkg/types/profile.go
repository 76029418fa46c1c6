// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// ConceptWeight is one concept's accumulated relevance in a profile.
type ConceptWeight struct {
	ConceptID   string  `json:"concept_id" yaml:"concept_id"`
	DisplayName string  `json:"display_name" yaml:"display_name"`
	Score       float64 `json:"score" yaml:"score"`
}

// WorkSummary is the immutable per-work view kept in a profile.
type WorkSummary struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Year          int      `json:"year" yaml:"year"`
	ConceptIDs    []string `json:"concept_ids" yaml:"concept_ids"`
	AuthorIDs     []string `json:"author_ids" yaml:"author_ids"`
	CitationCount int      `json:"citation_count" yaml:"citation_count"`
}

// HasConcept reports whether the work is tagged with conceptID.
func (w WorkSummary) HasConcept(conceptID string) bool {
	for _, id := range w.ConceptIDs {
		if id == conceptID {
			return true
		}
	}
	return false
}

// CoauthorGraph is an undirected adjacency map: author id to neighbor id to
// the number of works the two share.
type CoauthorGraph map[string]map[string]int

// AddEdge increments the undirected edge a–b. Self loops are ignored.
func (g CoauthorGraph) AddEdge(a, b string) {
	if a == "" || b == "" || a == b {
		return
	}
	g.inc(a, b, 1)
	g.inc(b, a, 1)
}

func (g CoauthorGraph) inc(from, to string, by int) {
	adj, ok := g[from]
	if !ok {
		adj = make(map[string]int)
		g[from] = adj
	}
	adj[to] += by
}

// Neighbors returns the ids adjacent to id in ascending order.
func (g CoauthorGraph) Neighbors(id string) []string {
	adj := g[id]
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// HasEdge reports whether a and b are adjacent.
func (g CoauthorGraph) HasEdge(a, b string) bool {
	_, ok := g[a][b]
	return ok
}

// ResearchProfile is the normalized aggregate of one author's works.
type ResearchProfile struct {
	AuthorID     string `json:"author_id" yaml:"author_id"`
	DisplayName  string `json:"display_name" yaml:"display_name"`
	WorksCount   int    `json:"works_count" yaml:"works_count"`
	CitedByCount int    `json:"cited_by_count" yaml:"cited_by_count"`

	// ConceptCounts is a sparse vector over concept ids.
	ConceptCounts map[string]float64 `json:"concept_counts" yaml:"concept_counts"`
	ConceptNames  map[string]string  `json:"concept_names" yaml:"concept_names"`

	// Coauthors maps collaborator id to display name; the author is never a key.
	Coauthors     map[string]string `json:"coauthors" yaml:"coauthors"`
	CoauthorGraph CoauthorGraph     `json:"coauthor_graph" yaml:"coauthor_graph"`

	// Works are ordered newest first.
	Works []WorkSummary `json:"works" yaml:"works"`

	// MedianYear is nil when no work carries a publication year.
	MedianYear  *int         `json:"median_year" yaml:"median_year"`
	Institution *Institution `json:"institution" yaml:"institution"`
}

// TopConcepts returns up to n concepts ordered by descending weight, ties by id.
func (p *ResearchProfile) TopConcepts(n int) []ConceptWeight {
	out := make([]ConceptWeight, 0, len(p.ConceptCounts))
	for id, score := range p.ConceptCounts {
		out = append(out, ConceptWeight{ConceptID: id, DisplayName: p.ConceptNames[id], Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ConceptID < out[j].ConceptID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
