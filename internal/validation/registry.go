package validation

import (
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Registry maps quiz days to their rule. It is immutable once built and safe for concurrent readers.
type Registry struct {
	rules map[int]Rule
}

// NewRegistry validates every rule and copies them into a new registry.
func NewRegistry(rules map[int]Rule) (*Registry, error) {
	copied := make(map[int]Rule, len(rules))
	for day, rule := range rules {
		if day <= 0 {
			return nil, fmt.Errorf("register rule: day %d is not positive", day)
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("register rule for day %d: %w", day, err)
		}
		rule.Accepted = slices.Clone(rule.Accepted)
		copied[day] = rule
	}
	return &Registry{rules: copied}, nil
}

// MustRegistry is NewRegistry for start-up tables.
func MustRegistry(rules map[int]Rule) *Registry {
	r, err := NewRegistry(rules)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the rule for day. A missing rule means the answer goes to the exact/oracle path.
func (r *Registry) Lookup(day int) (Rule, bool) {
	if r == nil {
		return Rule{}, false
	}
	rule, ok := r.rules[day]
	if !ok {
		return Rule{}, false
	}
	rule.Accepted = slices.Clone(rule.Accepted)
	return rule, true
}

// Days returns the registered days in ascending order.
func (r *Registry) Days() []int {
	if r == nil {
		return nil
	}
	days := make([]int, 0, len(r.rules))
	for day := range r.rules {
		days = append(days, day)
	}
	slices.Sort(days)
	return days
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// LoadRules decodes a YAML rule table keyed by day. A rule without max_items is unbounded.
func LoadRules(src io.Reader) (map[int]Rule, error) {
	var raw map[int]Rule
	if err := yaml.NewDecoder(src).Decode(&raw); err != nil {
		if err == io.EOF {
			return map[int]Rule{}, nil
		}
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	rules := make(map[int]Rule, len(raw))
	for day, rule := range raw {
		if rule.MaxItems == 0 {
			rule.MaxItems = Unbounded
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule for day %d: %w", day, err)
		}
		rules[day] = rule
	}
	return rules, nil
}
