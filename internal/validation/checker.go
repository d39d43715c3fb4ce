package validation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	DefaultThreshold     = 80
	DefaultOracleTimeout = 10 * time.Second
)

// CheckerConfig controls the oracle path of a Checker.
type CheckerConfig struct {
	OracleEnabled bool
	// Threshold is the minimum oracle confidence (0-100) for a match to count as correct.
	// Nil means DefaultThreshold; an explicit 0 accepts every oracle match.
	Threshold *int
	// Timeout bounds a single oracle call; zero means DefaultOracleTimeout.
	Timeout time.Duration
}

// Checker grades answers: registered rules first, then exact match, then the oracle.
// It holds no per-call state and is safe for concurrent use.
type Checker struct {
	rules     *Registry
	oracle    Oracle
	cfg       CheckerConfig
	threshold int
}

// NewChecker wires a registry and an optional oracle. A nil oracle disables the oracle path.
func NewChecker(rules *Registry, oracle Oracle, cfg CheckerConfig) *Checker {
	threshold := DefaultThreshold
	if cfg.Threshold != nil {
		if t := *cfg.Threshold; t >= 0 && t <= 100 {
			threshold = t
		} else {
			log.Printf("oracle threshold %d outside 0-100, using %d", t, DefaultThreshold)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultOracleTimeout
	}
	if oracle == nil {
		cfg.OracleEnabled = false
	}
	return &Checker{rules: rules, oracle: oracle, cfg: cfg, threshold: threshold}
}

// LookupRule returns the rule registered for day.
func (c *Checker) LookupRule(day int) (Rule, bool) {
	return c.rules.Lookup(day)
}

// Check grades userAnswer for day. It always returns a complete verdict; oracle failures
// fall back to the exact-match result.
func (c *Checker) Check(ctx context.Context, userAnswer, correctAnswer string, day int) Verdict {
	if rule, ok := c.rules.Lookup(day); ok {
		verdict, err := Evaluate(userAnswer, rule)
		if !errors.Is(err, ErrExternalRequired) {
			return verdict
		}
	}

	if strings.TrimSpace(userAnswer) == "" {
		return ruleVerdict(false, "Empty answer")
	}

	if Normalize(userAnswer, false) == Normalize(correctAnswer, false) {
		return Verdict{IsCorrect: true, Confidence: 100, Reasoning: "Exact match", Method: MethodExact}
	}
	if !c.cfg.OracleEnabled {
		return Verdict{IsCorrect: false, Confidence: 0, Reasoning: "No exact match (AI disabled)", Method: MethodExact}
	}

	judgement, err := c.judge(ctx, userAnswer, correctAnswer)
	if err != nil {
		log.Printf("oracle judge failed for day %d: %v", day, err)
		return Verdict{
			IsCorrect:  false,
			Confidence: 0,
			Reasoning:  fmt.Sprintf("AI validation failed (%v); no exact match", err),
			Method:     MethodExactFallback,
		}
	}
	return c.applyThreshold(judgement)
}

func (c *Checker) judge(ctx context.Context, userAnswer, correctAnswer string) (Judgement, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	raw, err := c.oracle.Judge(ctx, BuildPrompt(userAnswer, correctAnswer))
	if err != nil {
		return Judgement{}, err
	}
	return ParseJudgement(raw)
}

// applyThreshold never lets the oracle assert correctness below the configured trust floor.
func (c *Checker) applyThreshold(j Judgement) Verdict {
	reasoning := j.Reasoning
	if reasoning == "" {
		reasoning = "AI judgement"
	}
	if j.Match && j.Confidence < c.threshold {
		reasoning = fmt.Sprintf("AI match confidence %d below threshold %d: %s", j.Confidence, c.threshold, reasoning)
		return Verdict{IsCorrect: false, Confidence: j.Confidence, Reasoning: reasoning, Method: MethodAI}
	}
	return Verdict{
		IsCorrect:  j.Match,
		Confidence: j.Confidence,
		Reasoning:  reasoning,
		Method:     MethodAI,
	}
}
