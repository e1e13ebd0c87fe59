package grading

import "strings"

// CheckResult is the outcome of evaluating a single check
type CheckResult struct {
	Type     CheckType `json:"type"`
	Message  string    `json:"message"`
	Passed   bool      `json:"passed"`
	Expected int       `json:"expected"`
	Actual   int       `json:"actual"`
}

// Evaluate runs one check against the parsed document and the raw
// submission text. It never fails: unknown check types and missing
// fields evaluate to a failed result with actual=0.
func Evaluate(check Check, doc *Document, raw string) CheckResult {
	min := check.Threshold()
	result := CheckResult{
		Type:     check.Type,
		Message:  checkMessage(check),
		Expected: min,
	}

	switch check.Type {
	case CheckElement:
		if tag := strings.ToLower(check.Tag); tag != "" {
			result.Actual = doc.CountTag(tag)
		}

	case CheckElementAny:
		for _, tag := range check.Tags {
			result.Actual += doc.CountTag(strings.ToLower(tag))
		}

	case CheckAttribute, CheckAttributeEquals, CheckAttributeContains:
		result.Actual = countAttrMatches(check, doc)

	case CheckTextContains:
		needle := strings.ToLower(strings.TrimSpace(check.Text))
		haystack := strings.ToLower(stripTags(raw))
		if needle != "" && strings.Contains(haystack, needle) {
			result.Actual = 1
		}
		result.Expected = 1
		result.Passed = result.Actual >= 1
		return result

	case CheckTextLength:
		result.Actual = len(strings.TrimSpace(raw))

	default:
		// Unrecognized type always fails, whatever the threshold says.
		result.Passed = false
		return result
	}

	result.Passed = result.Actual >= min
	return result
}

// countAttrMatches counts elements carrying the check's attribute,
// optionally filtered by value equality or substring containment.
// All value comparisons are case-insensitive.
func countAttrMatches(check Check, doc *Document) int {
	tag := strings.ToLower(check.Tag)
	if tag == "" {
		tag = Wildcard
	}
	attr := strings.ToLower(check.Attr)
	wantValue := strings.ToLower(check.Value)
	needle := strings.ToLower(check.Needle)

	count := 0
	for _, el := range doc.ElementsByTag(tag) {
		if attr == "" || !el.HasAttr(attr) {
			continue
		}
		value := strings.ToLower(el.Attr(attr))

		switch check.Type {
		case CheckAttribute:
			count++
		case CheckAttributeEquals:
			if value == wantValue {
				count++
			}
		case CheckAttributeContains:
			if needle != "" && strings.Contains(value, needle) {
				count++
			}
		}
	}
	return count
}

// stripTags removes <...> runs from the raw submission without
// decoding entities, so text checks see the literal characters the
// learner typed between tags. An unterminated tag swallows the rest
// of the input.
func stripTags(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	inTag := false
	for i := 0; i < len(raw); i++ {
		switch {
		case raw[i] == '<':
			inTag = true
		case raw[i] == '>':
			inTag = false
		case !inTag:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

func checkMessage(check Check) string {
	if check.Message == "" {
		return "Requirement check"
	}
	return check.Message
}
