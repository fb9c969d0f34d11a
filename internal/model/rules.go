package model

import "strings"

// MappingRule routes transactions whose mapping key contains Pattern to the
// category named Category.
type MappingRule struct {
	Pattern  string
	Category string
}

// RuleSet is an ordered, read-only table of mapping rules. Earlier rules win
// when patterns overlap.
type RuleSet struct {
	source string
	rules  []MappingRule
}

// NewRuleSet copies rules into a new set, dropping entries with an empty
// pattern or category. Patterns are stored upper-cased.
func NewRuleSet(source string, rules []MappingRule) *RuleSet {
	kept := make([]MappingRule, 0, len(rules))
	for _, r := range rules {
		pattern := strings.ToUpper(strings.TrimSpace(r.Pattern))
		category := strings.TrimSpace(r.Category)
		if pattern == "" || category == "" {
			continue
		}
		kept = append(kept, MappingRule{Pattern: pattern, Category: category})
	}
	return &RuleSet{source: source, rules: kept}
}

// Rules returns a copy of the rules in precedence order.
func (s *RuleSet) Rules() []MappingRule {
	if s == nil {
		return nil
	}
	out := make([]MappingRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Source describes where the rules came from (a file path or "built-in").
func (s *RuleSet) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}
