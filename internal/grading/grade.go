package grading

import "math"

// Result aggregates every check outcome for one submission. Passed is
// true only when all checks pass; Score is an integer 0-100.
type Result struct {
	Passed bool          `json:"passed"`
	Score  int           `json:"score"`
	Checks []CheckResult `json:"checks"`
}

// Grade evaluates every check in the rule set against a single parse of
// the submitted HTML. It is a pure function of its inputs: the same
// submission and rules always produce the same result.
func Grade(rawHTML string, rules RuleSet) Result {
	if rules.IsEmpty() {
		return Result{Passed: false, Score: 0, Checks: []CheckResult{}}
	}

	doc := Parse(rawHTML)

	results := make([]CheckResult, 0, len(rules.Checks))
	passedCount := 0
	for _, check := range rules.Checks {
		res := Evaluate(check, doc, rawHTML)
		if res.Passed {
			passedCount++
		}
		results = append(results, res)
	}

	total := len(rules.Checks)
	score := int(math.Round(float64(passedCount) / float64(total) * 100))

	return Result{
		Passed: passedCount == total,
		Score:  score,
		Checks: results,
	}
}
