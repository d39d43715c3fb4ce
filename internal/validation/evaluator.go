package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExternalRequired is returned by Evaluate for rules that can only be judged by the oracle.
var ErrExternalRequired = errors.New("external judgement required")

// comparator checks a non-empty answer against a rule and explains the outcome.
type comparator interface {
	compare(answer string, rule Rule) (bool, string)
}

// comparators maps every rule-evaluated strategy to its comparator.
// StrategyExternalOnly is intentionally absent.
var comparators = map[Strategy]comparator{
	StrategyExact:    exactComparator{},
	StrategyContains: containsComparator{},
	StrategyList:     listComparator{},
	StrategyNumeric:  numericComparator{},
	StrategyAnyOf:    anyOfComparator{},
}

// Evaluate grades answer with rule. It returns ErrExternalRequired for external-only rules;
// every other outcome, including malformed answers, is a Verdict.
func Evaluate(answer string, rule Rule) (Verdict, error) {
	if strings.TrimSpace(answer) == "" {
		return ruleVerdict(false, "Empty answer"), nil
	}
	if rule.Strategy == StrategyExternalOnly {
		return Verdict{}, ErrExternalRequired
	}

	cmp, ok := comparators[rule.Strategy]
	if !ok {
		return Verdict{
			IsCorrect:  false,
			Confidence: 0,
			Reasoning:  fmt.Sprintf("Unknown validation strategy: %q", rule.Strategy),
			Method:     MethodError,
		}, nil
	}
	correct, reasoning := cmp.compare(answer, rule)
	return ruleVerdict(correct, reasoning), nil
}
