package retrieval

import (
	"sort"
	"strings"

	"github.com/oneiro-ai/oneiro/internal/models"
)

// stopwords excluded from keyword scoring; question scaffolding would
// otherwise dominate the overlap.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "about": true, "do": true,
	"does": true, "have": true, "i": true, "in": true, "is": true,
	"my": true, "of": true, "the": true, "to": true, "what": true,
	"with": true, "dream": true, "dreams": true,
}

// SearchKeywords is the degraded retrieval path used when the embedding
// service is unavailable: plain token matching over title, summary, tags
// and key entities. Entries that share no query token are excluded.
func SearchKeywords(raw string, pool []models.DreamEntry, limit int) []models.DreamEntry {
	terms := keywordTerms(raw)
	if len(terms) == 0 {
		return nil
	}

	type scored struct {
		entry models.DreamEntry
		score float64
	}
	ranked := make([]scored, 0, len(pool))
	for _, entry := range pool {
		if s := keywordScore(terms, entry); s > 0 {
			ranked = append(ranked, scored{entry: entry, score: s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].entry.IndexedAt.After(ranked[j].entry.IndexedAt)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]models.DreamEntry, len(ranked))
	for i, s := range ranked {
		out[i] = s.entry
	}
	return out
}

func keywordTerms(raw string) []string {
	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 1 && !stopwords[f] {
			terms = append(terms, f)
		}
	}
	return terms
}

// keywordScore counts matched query terms, weighting tag and entity hits
// above free-text hits in the summary.
func keywordScore(terms []string, entry models.DreamEntry) float64 {
	haystack := strings.ToLower(entry.Title + " " + entry.Summary)
	tagged := make(map[string]bool, len(entry.Tags)+len(entry.KeyEntities))
	for _, t := range entry.Tags {
		tagged[strings.ToLower(t)] = true
	}
	for _, e := range entry.KeyEntities {
		tagged[strings.ToLower(e)] = true
	}

	var score float64
	for _, term := range terms {
		switch {
		case tagged[term]:
			score += 2
		case strings.Contains(haystack, term):
			score++
		}
	}
	return score
}
