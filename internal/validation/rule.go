package validation

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Strategy selects the comparator used for a rule.
type Strategy string

const (
	StrategyExact        Strategy = "exact"
	StrategyContains     Strategy = "contains"
	StrategyList         Strategy = "list"
	StrategyNumeric      Strategy = "numeric"
	StrategyAnyOf        Strategy = "any_of"
	StrategyExternalOnly Strategy = "external"
)

// Strategies lists every known strategy.
var Strategies = []Strategy{
	StrategyExact,
	StrategyContains,
	StrategyList,
	StrategyNumeric,
	StrategyAnyOf,
	StrategyExternalOnly,
}

// Unbounded is the default MaxItems of a rule.
const Unbounded = math.MaxInt

// Rule describes how the answer to one question is checked.
// For list rules Accepted is the pool of every acceptable item variant, not the expected list itself.
type Rule struct {
	Strategy      Strategy `yaml:"strategy" validate:"oneof=exact contains list numeric any_of external"`
	Accepted      []string `yaml:"accepted" validate:"required_unless=Strategy external,dive,required"`
	Tolerance     float64  `yaml:"tolerance" validate:"gte=0"`
	CaseSensitive bool     `yaml:"case_sensitive"`
	MinItems      int      `yaml:"min_items" validate:"gte=0"`
	MaxItems      int      `yaml:"max_items" validate:"gtefield=MinItems"`
	Description   string   `yaml:"description"`
}

// RuleOption customizes a rule built by NewRule.
type RuleOption func(*Rule)

// WithTolerance sets the edit-distance tolerance (exact) or absolute numeric tolerance (numeric).
func WithTolerance(tolerance float64) RuleOption {
	return func(r *Rule) { r.Tolerance = tolerance }
}

// WithCaseSensitive disables lower-casing during normalization.
func WithCaseSensitive() RuleOption {
	return func(r *Rule) { r.CaseSensitive = true }
}

// WithItems bounds the number of distinct items of a list answer.
func WithItems(minItems, maxItems int) RuleOption {
	return func(r *Rule) {
		r.MinItems = minItems
		r.MaxItems = maxItems
	}
}

// WithDescription attaches a note about the question.
func WithDescription(description string) RuleOption {
	return func(r *Rule) { r.Description = description }
}

// NewRule builds and validates a rule.
func NewRule(strategy Strategy, accepted []string, opts ...RuleOption) (Rule, error) {
	rule := Rule{
		Strategy: strategy,
		Accepted: slices.Clone(accepted),
		MaxItems: Unbounded,
	}
	for _, opt := range opts {
		opt(&rule)
	}
	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// MustRule is NewRule for static tables; it panics on an invalid rule.
func MustRule(strategy Strategy, accepted []string, opts ...RuleOption) Rule {
	rule, err := NewRule(strategy, accepted, opts...)
	if err != nil {
		panic(err)
	}
	return rule
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the rule invariants.
func (r Rule) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid %s rule: %s", r.strategyLabel(), describe(verrs))
		}
		return fmt.Errorf("invalid %s rule: %w", r.strategyLabel(), err)
	}
	// required_unless lets an explicit empty list through
	if r.Strategy != StrategyExternalOnly && len(r.Accepted) == 0 {
		return fmt.Errorf("invalid %s rule: accepted answers must not be empty", r.strategyLabel())
	}
	for i, a := range r.Accepted {
		if Normalize(a, r.CaseSensitive) == "" {
			return fmt.Errorf("invalid %s rule: empty accepted answer at Accepted[%d]", r.strategyLabel(), i)
		}
	}
	if r.Strategy == StrategyNumeric {
		if _, err := parseNumber(r.Accepted[0]); err != nil {
			return fmt.Errorf("invalid numeric rule: target %q is not a number", r.Accepted[0])
		}
	}
	return nil
}

func (r Rule) strategyLabel() string {
	if r.Strategy == "" {
		return "untyped"
	}
	return string(r.Strategy)
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("unknown strategy %q", fe.Value()))
		case "required_unless":
			msgs = append(msgs, "accepted answers must not be empty")
		case "required":
			msgs = append(msgs, "empty accepted answer at "+fe.Field())
		case "gtefield":
			msgs = append(msgs, "min_items must not exceed max_items")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
