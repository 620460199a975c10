package retrieval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/oneiro-ai/oneiro/internal/models"
)

// suggestionCount bounds the "did you mean" list on a miss.
const suggestionCount = 3

// TitleMatcher resolves a quoted title against candidate entries.
// Exact matches (case-insensitive, whitespace-normalized) win outright;
// otherwise candidates above Threshold similarity are considered.
type TitleMatcher struct {
	Threshold float64
}

// Match returns at most one entry. Duplicate exact titles resolve to the
// most recently indexed entry; content from multiple entries is never
// merged. A miss yields empty items plus nearest-title suggestions.
func (m TitleMatcher) Match(title string, candidates []models.DreamEntry) Result {
	result := Result{Mode: ModeSingleItem}
	want := normalizeTitle(title)
	if want == "" || len(candidates) == 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("no dream titled %q found", title))
		return result
	}

	// Exact pass: duplicates resolve by recency.
	var exact *models.DreamEntry
	for i := range candidates {
		c := &candidates[i]
		if normalizeTitle(c.Title) != want {
			continue
		}
		if exact == nil || c.IndexedAt.After(exact.IndexedAt) {
			exact = c
		}
	}
	if exact != nil {
		result.Items = []models.DreamEntry{*exact}
		result.Confidence = confidence(1.0)
		return result
	}

	// Fuzzy pass.
	type scored struct {
		entry models.DreamEntry
		sim   float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{entry: c, sim: titleSimilarity(want, normalizeTitle(c.Title))})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].sim != ranked[j].sim {
			return ranked[i].sim > ranked[j].sim
		}
		return ranked[i].entry.IndexedAt.After(ranked[j].entry.IndexedAt)
	})

	if best := ranked[0]; best.sim >= m.Threshold {
		result.Items = []models.DreamEntry{best.entry}
		result.Confidence = confidence(best.sim)
		return result
	}

	// Miss: surface the closest titles so the caller can prompt
	// "did you mean".
	result.Notes = append(result.Notes, fmt.Sprintf("no dream titled %q found", title))
	for i, s := range ranked {
		if i >= suggestionCount || s.sim <= 0 {
			break
		}
		result.Notes = append(result.Notes, fmt.Sprintf("did you mean %q?", s.entry.Title))
	}
	return result
}

// normalizeTitle lowercases and collapses interior whitespace.
func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// titleSimilarity blends normalized edit distance with token overlap,
// taking whichever signal is stronger. Both inputs must already be
// normalized.
func titleSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	dist := levenshtein.ComputeDistance(a, b)
	longest := max(len([]rune(a)), len([]rune(b)))
	editSim := 1 - float64(dist)/float64(longest)

	overlap := tokenOverlap(strings.Fields(a), strings.Fields(b))

	return max(editSim, overlap)
}

// tokenOverlap is the Jaccard index of two token sets.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, tok := range a {
		set[tok] = true
	}
	shared := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, tok := range b {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if set[tok] {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}
