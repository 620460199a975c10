package retrieval

import "strings"

// quotePairs maps opening quote runes to their closing counterparts.
// Straight and curly double quotes are recognized; single quotes are
// not, since apostrophes inside dream titles would misfire.
var quotePairs = map[rune]rune{
	'"': '"',
	'“': '”',
}

// Classify derives the retrieval query for one user turn. Text holding a
// balanced, non-empty quoted substring becomes a single-item lookup for
// that title; everything else is a pattern search. Quote detection wins
// over any pattern heuristic, so mixed intent resolves to single-item.
// Pure: malformed input degrades to pattern search, never errors.
func Classify(raw string, maxTitleLen int) Query {
	title, ok := firstQuoted(raw)
	if ok {
		title = strings.TrimSpace(title)
		if title != "" {
			return Query{
				Raw:   raw,
				Mode:  ModeSingleItem,
				Title: truncateRunes(title, maxTitleLen),
			}
		}
	}
	return Query{Raw: raw, Mode: ModePatternSearch}
}

// firstQuoted returns the contents of the first balanced quoted
// substring. An opening quote without its closing partner does not match.
func firstQuoted(s string) (string, bool) {
	runes := []rune(s)
	for i, r := range runes {
		closer, isOpen := quotePairs[r]
		if !isOpen {
			continue
		}
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == closer {
				return string(runes[i+1 : j]), true
			}
		}
	}
	return "", false
}

// truncateRunes shortens overlong titles instead of rejecting them.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
