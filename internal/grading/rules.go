package grading

import (
	"encoding/json"
	"fmt"
)

// CheckType identifies the semantics of a single grading check
type CheckType string

const (
	// CheckElement counts elements with a given tag name
	CheckElement CheckType = "element"
	// CheckElementAny sums element counts across several tag names
	CheckElementAny CheckType = "element_any"
	// CheckAttribute counts elements that possess an attribute
	CheckAttribute CheckType = "attribute"
	// CheckAttributeEquals counts elements whose attribute value matches exactly
	CheckAttributeEquals CheckType = "attribute_equals"
	// CheckAttributeContains counts elements whose attribute value contains a substring
	CheckAttributeContains CheckType = "attribute_contains"
	// CheckTextContains requires the tag-stripped text to contain a phrase
	CheckTextContains CheckType = "text_contains"
	// CheckTextLength requires a minimum length of trimmed submission text
	CheckTextLength CheckType = "text_length"
)

// Check is one testable grading rule. Type selects which of the
// type-specific fields are meaningful; the evaluator ignores the rest.
// Min defaults to 1 when absent from the stored document.
type Check struct {
	Type    CheckType `json:"type" yaml:"type"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
	Min     *int      `json:"min,omitempty" yaml:"min,omitempty"`

	// element / attribute checks
	Tag  string   `json:"tag,omitempty" yaml:"tag,omitempty"`
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// attribute checks
	Attr   string `json:"attr,omitempty" yaml:"attr,omitempty"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
	Needle string `json:"needle,omitempty" yaml:"needle,omitempty"`

	// text_contains
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Threshold returns the minimum count for the check, defaulting to 1
func (c Check) Threshold() int {
	if c.Min == nil {
		return 1
	}
	return *c.Min
}

// RuleSet is the ordered collection of checks graded for one task
type RuleSet struct {
	Checks []Check `json:"checks" yaml:"checks"`
}

// IsEmpty reports whether the rule set has no checks
func (r RuleSet) IsEmpty() bool {
	return len(r.Checks) == 0
}

// ParseRuleSet decodes a stored grading_rules JSON document. It returns
// an error when the document is malformed or contains no checks, so
// callers can fall back to inferred rules.
func ParseRuleSet(raw string) (RuleSet, error) {
	var rs RuleSet
	if err := json.Unmarshal([]byte(raw), &rs); err != nil {
		return RuleSet{}, fmt.Errorf("decode rule set: %w", err)
	}
	if rs.IsEmpty() {
		return RuleSet{}, fmt.Errorf("rule set has no checks")
	}
	return rs, nil
}

// MinOf is a convenience for building checks with explicit thresholds
func MinOf(n int) *int {
	return &n
}
