// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/collab-finder/pkg/types"
)

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func rule(w io.Writer, n int) {
	fmt.Fprintln(w, strings.Repeat("-", n))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func intOrDash(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprint(*p)
}

// WriteCompatibility prints the breakdown followed by its evidence.
func WriteCompatibility(w io.Writer, r *types.CompatibilityResult) {
	b := r.Breakdown
	fmt.Fprintf(w, "Compatibility %s -> %s\n", r.UserID, r.TargetID)
	rule(w, 48)
	fmt.Fprintf(w, "%-24s %3d\n", "Overall", b.Overall)
	fmt.Fprintf(w, "%-24s %3d\n", "Topic similarity", b.TopicSimilarity)
	fmt.Fprintf(w, "%-24s %3d\n", "Co-author distance", b.CoauthorDistance)
	fmt.Fprintf(w, "%-24s %3d\n", "Institution proximity", b.InstitutionProximity)
	fmt.Fprintf(w, "%-24s %3d\n", "Recency alignment", b.RecencyAlignment)

	ev := r.Evidence
	fmt.Fprintln(w)
	if len(ev.ConceptWeights) == 0 {
		fmt.Fprintln(w, "Overlapping concepts: none")
	} else {
		fmt.Fprintln(w, "Overlapping concepts:")
		for _, c := range ev.ConceptWeights {
			fmt.Fprintf(w, "  %-36s user %.2f  target %.2f\n", clip(c.DisplayName, 36), c.UserWeight, c.TargetWeight)
		}
	}
	if len(ev.SharedCoauthors) > 0 {
		fmt.Fprintf(w, "Shared co-authors: %s\n", strings.Join(ev.SharedCoauthors, ", "))
	}
	if len(ev.CoauthorPath) > 0 {
		fmt.Fprintf(w, "Co-author path: %s\n", strings.Join(ev.CoauthorPath, " -> "))
	}
	fmt.Fprintf(w, "Median years: user %s, target %s\n", intOrDash(ev.MedianYears.User), intOrDash(ev.MedianYears.Target))
	if len(ev.AlignedPublications) > 0 {
		fmt.Fprintln(w, "Aligned publications:")
		for _, p := range ev.AlignedPublications {
			fmt.Fprintf(w, "  %4d  %s [%s]\n", p.Year, clip(p.Title, 60), strings.Join(p.MatchedConcepts, ", "))
		}
	}
}

// WriteTrending prints the topic and scientist rankings.
func WriteTrending(w io.Writer, r *types.TrendingResult) {
	fmt.Fprintf(w, "Recent window %s, previous window %s\n\n", r.Recent, r.Previous)
	writeTrendTable(w, "Trending topics", r.Topics)
	fmt.Fprintln(w)
	writeTrendTable(w, "Trending scientists", r.Scientists)
}

func writeTrendTable(w io.Writer, title string, entries []types.TrendEntry) {
	fmt.Fprintln(w, title)
	if len(entries) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	fmt.Fprintf(w, "%-4s  %-36s  %8s  %8s  %7s  %8s\n", "Rank", "Name", "Recent", "Previous", "Growth", "Works")
	rule(w, 82)
	for i, e := range entries {
		fmt.Fprintf(w, "%-4d  %-36s  %8d  %8d  %+7d  %8s\n",
			i+1, clip(orDash(e.DisplayName), 36), e.RecentCount, e.PreviousCount, e.Growth, intOrDash(e.WorksCount))
	}
}

// WriteProfile prints a profile summary with its strongest concepts.
func WriteProfile(w io.Writer, p *types.ResearchProfile) {
	fmt.Fprintf(w, "%s (%s)\n", p.DisplayName, p.AuthorID)
	if p.Institution != nil {
		fmt.Fprintf(w, "Institution: %s %s\n", p.Institution.DisplayName, p.Institution.CountryCode)
	}
	fmt.Fprintf(w, "Works: %d (profiled %d), citations: %d, median year: %s\n",
		p.WorksCount, len(p.Works), p.CitedByCount, intOrDash(p.MedianYear))
	fmt.Fprintf(w, "Co-authors: %d\n", len(p.Coauthors))
	top := p.TopConcepts(10)
	if len(top) > 0 {
		fmt.Fprintln(w, "Top concepts:")
		for _, c := range top {
			fmt.Fprintf(w, "  %-36s %6.2f\n", clip(orDash(c.DisplayName), 36), c.Score)
		}
	}
}

// WriteNetwork prints network stats and the best-connected authors.
func WriteNetwork(w io.Writer, n types.Network) {
	fmt.Fprintf(w, "%d authors, %d links\n", n.Stats.NodeCount, n.Stats.LinkCount)
	if len(n.Stats.TopAuthors) == 0 {
		return
	}
	fmt.Fprintf(w, "%-36s  %6s\n", "Author", "Degree")
	rule(w, 44)
	for _, a := range n.Stats.TopAuthors {
		fmt.Fprintf(w, "%-36s  %6d\n", clip(a.Name, 36), a.Degree)
	}
}

// WriteConcepts prints concept search results.
func WriteConcepts(w io.Writer, cs []types.ConceptRecord) {
	if len(cs) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-40s  %9s\n", "ID", "Name", "Works")
	rule(w, 89)
	for _, c := range cs {
		fmt.Fprintf(w, "%-36s  %-40s  %9d\n", clip(c.ID, 36), clip(c.DisplayName, 40), c.WorksCount)
	}
}

// WriteAuthors prints author search results.
func WriteAuthors(w io.Writer, as []types.AuthorRecord) {
	if len(as) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-28s  %7s  %9s  %s\n", "ID", "Name", "Works", "Citations", "Institution")
	rule(w, 110)
	for _, a := range as {
		inst := "-"
		if !a.LastKnownInstitution.IsZero() {
			inst = a.LastKnownInstitution.DisplayName
		}
		fmt.Fprintf(w, "%-36s  %-28s  %7d  %9d  %s\n",
			clip(a.ID, 36), clip(a.DisplayName, 28), a.WorksCount, a.CitedByCount, clip(inst, 30))
	}
}

// WriteInstitutions prints institution search results.
func WriteInstitutions(w io.Writer, is []types.InstitutionRecord) {
	if len(is) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-36s  %7s  %s\n", "ID", "Name", "Works", "Location")
	rule(w, 100)
	for _, i := range is {
		loc := strings.Trim(strings.Join([]string{i.City, i.CountryCode}, ", "), ", ")
		fmt.Fprintf(w, "%-36s  %-36s  %7d  %s\n", clip(i.ID, 36), clip(i.DisplayName, 36), i.WorksCount, orDash(loc))
	}
}
