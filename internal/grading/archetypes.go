package grading

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed archetypes.yaml
var archetypesYAML []byte

// Archetype pairs a title substring with the rule set it implies.
// Table order is significant: the first match wins.
type Archetype struct {
	Match  string  `yaml:"match"`
	Checks []Check `yaml:"checks"`
}

type archetypeFile struct {
	Archetypes []Archetype `yaml:"archetypes"`
}

// LoadArchetypes parses the embedded archetype table
func LoadArchetypes() ([]Archetype, error) {
	var file archetypeFile
	if err := yaml.Unmarshal(archetypesYAML, &file); err != nil {
		return nil, fmt.Errorf("parse archetypes: %w", err)
	}
	if len(file.Archetypes) == 0 {
		return nil, fmt.Errorf("archetype table is empty")
	}
	for i, a := range file.Archetypes {
		if a.Match == "" {
			return nil, fmt.Errorf("archetype %d has no match string", i)
		}
		if len(a.Checks) == 0 {
			return nil, fmt.Errorf("archetype %q has no checks", a.Match)
		}
	}
	return file.Archetypes, nil
}

// matchTitle returns the rule set for the first archetype whose match
// string appears in the lowercased title, or false when none matches.
func matchTitle(archetypes []Archetype, title string) (RuleSet, bool) {
	lower := strings.ToLower(title)
	for _, a := range archetypes {
		if strings.Contains(lower, strings.ToLower(a.Match)) {
			return RuleSet{Checks: a.Checks}, true
		}
	}
	return RuleSet{}, false
}
