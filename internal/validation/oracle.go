package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Oracle is the external semantic judge consulted when rules are absent or inconclusive.
type Oracle interface {
	Judge(ctx context.Context, prompt string) (string, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, prompt string) (string, error)

func (f OracleFunc) Judge(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrMalformedJudgement is returned when the oracle output cannot be read as a judgement.
var ErrMalformedJudgement = errors.New("malformed oracle judgement")

// Judgement is the parsed oracle answer.
type Judgement struct {
	Match      bool
	Confidence int
	Reasoning  string
}

// BuildPrompt asks the oracle to compare a player answer with the expected answer.
func BuildPrompt(userAnswer, correctAnswer string) string {
	var b strings.Builder
	b.WriteString("You are grading an answer in a Christmas calendar trivia quiz. ")
	b.WriteString("Answers may be written in Swedish or English.\n\n")
	fmt.Fprintf(&b, "Expected answer: %q\n", correctAnswer)
	fmt.Fprintf(&b, "Player answer: %q\n\n", userAnswer)
	b.WriteString("Decide whether the player answer means the same as the expected answer. Accept:\n")
	b.WriteString("- minor spelling mistakes and missing diacritics,\n")
	b.WriteString("- synonyms and translations of the same thing,\n")
	b.WriteString("- lists with the same items in a different order.\n")
	b.WriteString("Reject answers that are vaguer than, or only partly cover, the expected answer.\n\n")
	b.WriteString(`Respond with JSON only: {"match": "yes" | "no", "confidence": <integer 0-100>, "reasoning": "<one sentence>"}`)
	return b.String()
}

type yesNo bool

func (v *yesNo) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = yesNo(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true":
		*v = true
	case "no", "false":
		*v = false
	default:
		return fmt.Errorf("match: unexpected value %q", s)
	}
	return nil
}

// ParseJudgement reads the oracle output, tolerating a markdown code fence around the JSON.
func ParseJudgement(raw string) (Judgement, error) {
	body := stripCodeFences(raw)
	if body == "" {
		return Judgement{}, fmt.Errorf("%w: empty response", ErrMalformedJudgement)
	}

	var out struct {
		Match      *yesNo   `json:"match"`
		Confidence *float64 `json:"confidence"`
		Reasoning  string   `json:"reasoning"`
	}
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&out); err != nil {
		return Judgement{}, fmt.Errorf("%w: %v", ErrMalformedJudgement, err)
	}
	if out.Match == nil {
		return Judgement{}, fmt.Errorf("%w: missing match", ErrMalformedJudgement)
	}
	if out.Confidence == nil {
		return Judgement{}, fmt.Errorf("%w: missing confidence", ErrMalformedJudgement)
	}
	confidence := int(math.Round(*out.Confidence))
	if confidence < 0 || confidence > 100 {
		return Judgement{}, fmt.Errorf("%w: confidence %v out of range", ErrMalformedJudgement, *out.Confidence)
	}
	return Judgement{
		Match:      bool(*out.Match),
		Confidence: confidence,
		Reasoning:  strings.TrimSpace(out.Reasoning),
	}, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
