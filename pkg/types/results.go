// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TrendEntry is one ranked concept or author. The enrichment fields are nil
// when the detail lookup for that entry failed.
type TrendEntry struct {
	ID            string  `json:"id" yaml:"id"`
	DisplayName   string  `json:"display_name" yaml:"display_name"`
	RecentCount   int     `json:"recent_publications" yaml:"recent_publications"`
	PreviousCount int     `json:"previous_publications" yaml:"previous_publications"`
	Growth        int     `json:"growth" yaml:"growth"`
	GrowthRate    float64 `json:"growth_rate" yaml:"growth_rate"`

	Description          *string      `json:"description,omitempty" yaml:"description,omitempty"`
	WorksCount           *int         `json:"works_count,omitempty" yaml:"works_count,omitempty"`
	CitedByCount         *int         `json:"cited_by_count,omitempty" yaml:"cited_by_count,omitempty"`
	LastKnownInstitution *Institution `json:"last_known_institution,omitempty" yaml:"last_known_institution,omitempty"`
}

// TrendingResult holds both ranked lists.
type TrendingResult struct {
	Topics     []TrendEntry `json:"topics" yaml:"topics"`
	Scientists []TrendEntry `json:"scientists" yaml:"scientists"`
	Recent     Window       `json:"recent_window" yaml:"recent_window"`
	Previous   Window       `json:"previous_window" yaml:"previous_window"`
}

// CompatibilityBreakdown holds the four sub-scores and the weighted overall,
// each in [0,100].
type CompatibilityBreakdown struct {
	Overall              int `json:"overall" yaml:"overall"`
	TopicSimilarity      int `json:"topic_similarity" yaml:"topic_similarity"`
	CoauthorDistance     int `json:"coauthor_distance" yaml:"coauthor_distance"`
	InstitutionProximity int `json:"institution_proximity" yaml:"institution_proximity"`
	RecencyAlignment     int `json:"recency_alignment" yaml:"recency_alignment"`
}

// OverlapConcept is a concept both profiles carry, with each side's weight.
type OverlapConcept struct {
	ConceptID    string  `json:"concept_id" yaml:"concept_id"`
	DisplayName  string  `json:"display_name" yaml:"display_name"`
	UserWeight   float64 `json:"user_weight" yaml:"user_weight"`
	TargetWeight float64 `json:"target_weight" yaml:"target_weight"`
}

// AlignedPublication is a target work touching the shared concepts.
type AlignedPublication struct {
	Title           string   `json:"title" yaml:"title"`
	Year            int      `json:"year" yaml:"year"`
	MatchedConcepts []string `json:"matched_concepts" yaml:"matched_concepts"`
}

// MedianYears reports whichever median years exist for the two profiles.
type MedianYears struct {
	User   *int `json:"user" yaml:"user"`
	Target *int `json:"target" yaml:"target"`
}

// Evidence is the human-readable support for a compatibility score.
type Evidence struct {
	OverlappingConcepts []string             `json:"overlapping_concepts" yaml:"overlapping_concepts"`
	ConceptWeights      []OverlapConcept     `json:"concept_weights" yaml:"concept_weights"`
	SharedCoauthors     []string             `json:"shared_coauthors" yaml:"shared_coauthors"`
	CoauthorPath        []string             `json:"coauthor_path" yaml:"coauthor_path"`
	AlignedPublications []AlignedPublication `json:"aligned_publications" yaml:"aligned_publications"`
	MedianYears         MedianYears          `json:"median_years" yaml:"median_years"`
}

// CompatibilityResult is the scored comparison of two researchers.
type CompatibilityResult struct {
	UserID    string                 `json:"user_id" yaml:"user_id"`
	TargetID  string                 `json:"target_id" yaml:"target_id"`
	Breakdown CompatibilityBreakdown `json:"breakdown" yaml:"breakdown"`
	Evidence  Evidence               `json:"evidence" yaml:"evidence"`
}

// NetworkNode is one author in a co-authorship network.
type NetworkNode struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Degree  int    `json:"degree" yaml:"degree"`
	IsFocus bool   `json:"is_focus" yaml:"is_focus"`
}

// NetworkLink is an undirected co-authorship edge.
type NetworkLink struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Weight int    `json:"weight" yaml:"weight"`
}

// TopAuthor is a node summary listed in network stats.
type TopAuthor struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Degree int    `json:"degree" yaml:"degree"`
}

// NetworkStats summarizes a network.
type NetworkStats struct {
	NodeCount  int         `json:"node_count" yaml:"node_count"`
	LinkCount  int         `json:"link_count" yaml:"link_count"`
	TopAuthors []TopAuthor `json:"top_authors" yaml:"top_authors"`
}

// Network is a co-authorship graph for graph-rendering consumers.
type Network struct {
	Nodes []NetworkNode `json:"nodes" yaml:"nodes"`
	Links []NetworkLink `json:"links" yaml:"links"`
	Stats NetworkStats  `json:"stats" yaml:"stats"`
}
