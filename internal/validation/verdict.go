package validation

// Method records which path produced a verdict.
type Method string

const (
	MethodRuleBased     Method = "rule_based"
	MethodExact         Method = "exact"
	MethodAI            Method = "ai"
	MethodExactFallback Method = "exact_fallback"
	MethodError         Method = "error"
)

// Verdict is the outcome of grading one answer.
type Verdict struct {
	IsCorrect  bool   `json:"is_correct"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
	Method     Method `json:"method"`
}

// ruleVerdict builds the binary verdict used by every rule-based comparator.
func ruleVerdict(correct bool, reasoning string) Verdict {
	confidence := 0
	if correct {
		confidence = 100
	}
	return Verdict{
		IsCorrect:  correct,
		Confidence: confidence,
		Reasoning:  reasoning,
		Method:     MethodRuleBased,
	}
}
