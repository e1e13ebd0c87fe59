package grading

import (
	"log/slog"

	"github.com/codedojo/codedojo/internal/domain"
)

// genericMinLength is the fallback threshold applied when neither stored
// rules nor an archetype cover a task.
const genericMinLength = 20

// Resolver maps a task to the rule set used to grade submissions for it.
// Stored rules win; otherwise the legacy title archetype table applies;
// otherwise a single generic length check. Resolution never fails.
type Resolver struct {
	archetypes []Archetype
}

// NewResolver creates a resolver backed by the embedded archetype table
func NewResolver() (*Resolver, error) {
	archetypes, err := LoadArchetypes()
	if err != nil {
		return nil, err
	}
	return &Resolver{archetypes: archetypes}, nil
}

// Resolve returns the rule set for a task. Always returns at least one check.
func (r *Resolver) Resolve(task *domain.Task) RuleSet {
	if task.GradingRules != nil && *task.GradingRules != "" {
		rules, err := ParseRuleSet(*task.GradingRules)
		if err == nil {
			return rules
		}
		slog.Warn("stored grading rules unusable, falling back to inference",
			"task_id", task.ID,
			"error", err,
		)
	}

	if rules, ok := matchTitle(r.archetypes, task.Title); ok {
		return rules
	}

	return RuleSet{Checks: []Check{{
		Type:    CheckTextLength,
		Min:     MinOf(genericMinLength),
		Message: "Write at least 20 characters of HTML code",
	}}}
}
