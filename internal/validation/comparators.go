package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Fuzzy limits shared by the lenient strategies.
const (
	lenientDistance = 2
	listDistance    = 1
)

type exactComparator struct{}

// compare never applies substring leniency; typos are accepted only when the rule sets a tolerance.
func (exactComparator) compare(answer string, rule Rule) (bool, string) {
	normalized := Normalize(answer, rule.CaseSensitive)
	for _, accepted := range rule.Accepted {
		want := Normalize(accepted, rule.CaseSensitive)
		if normalized == want {
			return true, "Exact match"
		}
		if rule.Tolerance > 0 && float64(Distance(normalized, want)) <= rule.Tolerance {
			return true, fmt.Sprintf("Match with minor spelling difference (within tolerance %s)", formatNumber(rule.Tolerance))
		}
	}
	return false, "Does not match expected answer"
}

type containsComparator struct{}

func (containsComparator) compare(answer string, rule Rule) (bool, string) {
	normalized := Normalize(answer, rule.CaseSensitive)
	words := strings.Fields(normalized)

	var matched []string
	for _, term := range rule.Accepted {
		want := Normalize(term, rule.CaseSensitive)
		if strings.Contains(normalized, want) || strings.Contains(want, normalized) {
			matched = append(matched, term)
			continue
		}
		for _, word := range words {
			if FuzzyEqual(word, want, lenientDistance, true) {
				matched = append(matched, term)
				break
			}
		}
	}
	if len(matched) == 0 {
		return false, "Missing required terms"
	}
	return true, "Contains key term(s): " + strings.Join(matched, ", ")
}

type listComparator struct{}

// compare matches each user item against the whole synonym pool. Pool entries are not consumed,
// so two spellings of one concept both match; repeated identical items are rejected up front.
func (listComparator) compare(answer string, rule Rule) (bool, string) {
	raw := SplitItems(answer)
	if len(raw) == 0 {
		return false, "No items provided"
	}
	items := make([]string, len(raw))
	for i, item := range raw {
		items[i] = Normalize(item, rule.CaseSensitive)
	}

	if dups := duplicates(items); len(dups) > 0 {
		return false, "Duplicate items found: " + strings.Join(dups, ", ")
	}
	if len(items) < rule.MinItems {
		return false, fmt.Sprintf("Need at least %d unique items, provided %d", rule.MinItems, len(items))
	}
	if len(items) > rule.MaxItems {
		return false, fmt.Sprintf("Too many items: maximum %d, provided %d", rule.MaxItems, len(items))
	}

	pool := make([]string, len(rule.Accepted))
	for i, accepted := range rule.Accepted {
		pool[i] = Normalize(accepted, rule.CaseSensitive)
	}

	var invalid []string
	for _, item := range items {
		if !matchesPool(item, pool) {
			invalid = append(invalid, item)
		}
	}
	if len(invalid) > 0 {
		return false, "Invalid item(s): " + strings.Join(invalid, ", ")
	}
	return true, fmt.Sprintf("All %d items matched (order independent)", len(items))
}

// matchesPool allows an exact item or a single-character typo; substrings are not accepted
// so that one item cannot stand in for several.
func matchesPool(item string, pool []string) bool {
	for _, want := range pool {
		if item == want || Distance(item, want) <= listDistance {
			return true
		}
	}
	return false
}

// duplicates returns the repeated values of items in first-seen order.
func duplicates(items []string) []string {
	seen := make(map[string]int, len(items))
	var dups []string
	for _, item := range items {
		seen[item]++
		if seen[item] == 2 {
			dups = append(dups, item)
		}
	}
	return dups
}

// numberPattern accepts any Unicode decimal digits, e.g. "١١٠" or "１１０".
var numberPattern = regexp.MustCompile(`-?\p{Nd}+\.?\p{Nd}*`)

// asciiDigits rewrites Unicode decimal digits to ASCII so strconv can parse them.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII || !unicode.IsDigit(r) {
			return r
		}
		return '0' + digitValue(r)
	}, s)
}

// digitValue relies on every Nd block being a contiguous run that starts at zero.
func digitValue(r rune) rune {
	n := rune(0)
	for unicode.IsDigit(r - n - 1) {
		n++
	}
	return n % 10
}

// parseNumber parses a number written with any decimal digits.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(asciiDigits(strings.TrimSpace(s)), 64)
}

type numericComparator struct{}

func (numericComparator) compare(answer string, rule Rule) (bool, string) {
	found := numberPattern.FindString(answer)
	if found == "" {
		return false, "No numeric value found in answer"
	}
	got, err := parseNumber(found)
	if err != nil {
		return false, "Invalid numeric format"
	}
	if len(rule.Accepted) == 0 {
		return false, "Invalid numeric format"
	}
	target, err := parseNumber(rule.Accepted[0])
	if err != nil {
		return false, "Invalid numeric format"
	}

	diff := math.Abs(got - target)
	switch {
	case diff == 0:
		return true, "Exact numeric match: " + formatNumber(got)
	case diff <= rule.Tolerance:
		return true, fmt.Sprintf("Within tolerance: %s (±%s)", formatNumber(got), formatNumber(rule.Tolerance))
	default:
		return false, fmt.Sprintf("Outside acceptable range: %s vs %s (±%s)",
			formatNumber(got), formatNumber(target), formatNumber(rule.Tolerance))
	}
}

type anyOfComparator struct{}

// compare reports the first acceptable answer found in, or close to, the user's answer.
func (anyOfComparator) compare(answer string, rule Rule) (bool, string) {
	normalized := Normalize(answer, rule.CaseSensitive)
	for _, accepted := range rule.Accepted {
		want := Normalize(accepted, rule.CaseSensitive)
		if strings.Contains(normalized, want) || FuzzyEqual(normalized, want, lenientDistance, true) {
			return true, "Matched acceptable answer: " + accepted
		}
	}
	return false, "Does not match any acceptable answer"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
