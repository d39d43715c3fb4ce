package validation

import (
	"regexp"
	"strings"
)

// Normalize trims, lower-cases (unless caseSensitive) and collapses whitespace runs to a single space.
func Normalize(text string, caseSensitive bool) string {
	if !caseSensitive {
		text = strings.ToLower(text)
	}
	return strings.Join(strings.Fields(text), " ")
}

var listSeparators = regexp.MustCompile(`(?i)[,;]|\s+och\s+|\s+and\s+|\s+&\s+`)

// SplitItems splits a free-text list on commas, semicolons and the conjunctions "och", "and" and "&".
// Items are trimmed and empty items dropped; duplicates are kept.
func SplitItems(text string) []string {
	parts := listSeparators.Split(text, -1)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}

// Distance returns the Levenshtein distance between a and b counted in runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ra {
		curr[0] = i + 1
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[j+1] = min(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// FuzzyEqual reports whether a and b are equal, contain one another (when allowContains),
// or are within maxDistance edits. Cheap checks run before the distance computation.
func FuzzyEqual(a, b string, maxDistance int, allowContains bool) bool {
	if a == b {
		return true
	}
	if allowContains && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return true
	}
	return Distance(a, b) <= maxDistance
}
