// Package pattern maps transactions to budget categories using ordered
// substring rules.
package pattern

import (
	"strings"

	"github.com/Veraticus/budgetflow/internal/model"
)

// MatchSource tells which step of classification picked a category.
type MatchSource string

const (
	// MatchRule means an external mapping rule matched.
	MatchRule MatchSource = "rule"
	// MatchCategory means one of the category's own patterns matched.
	MatchCategory MatchSource = "category"
	// MatchIncomeFallback means an unmatched deposit went to the first income category.
	MatchIncomeFallback MatchSource = "income_fallback"
	// MatchNone means the transaction is unmapped.
	MatchNone MatchSource = ""
)

// Match is the result of classifying one transaction.
type Match struct {
	Source   MatchSource
	Pattern  string
	Category model.BudgetCategory
}

// Found reports whether a category was assigned.
func (m Match) Found() bool {
	return m.Source != MatchNone
}

// Classifier assigns categories. It holds no mutable state and is safe for
// concurrent use.
type Classifier struct {
	rules *model.RuleSet
}

// NewClassifier creates a classifier over a fixed rule set. A nil rule set
// behaves as an empty one.
func NewClassifier(rules *model.RuleSet) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns the rule set in use.
func (c *Classifier) Rules() *model.RuleSet {
	return c.rules
}

// Classify returns the category for txn, or false when it is unmapped.
func (c *Classifier) Classify(txn model.Transaction, structure *model.SheetStructure) (model.BudgetCategory, bool) {
	m := c.Explain(txn, structure)
	return m.Category, m.Found()
}

// Explain classifies txn and reports which step decided. The first match
// wins, in this order: mapping rules in their defined order, then each
// category's own patterns in sheet order, then (for positive amounts only)
// the first income category.
func (c *Classifier) Explain(txn model.Transaction, structure *model.SheetStructure) Match {
	if structure == nil {
		return Match{}
	}
	key := txn.MappingKey()

	for _, rule := range c.rules.Rules() {
		if !strings.Contains(key, rule.Pattern) {
			continue
		}
		if category, ok := structure.CategoryByName(rule.Category); ok {
			return Match{Source: MatchRule, Pattern: rule.Pattern, Category: category}
		}
	}

	for _, category := range structure.Categories {
		if pattern, ok := matchingPattern(category, key); ok {
			return Match{Source: MatchCategory, Pattern: pattern, Category: category}
		}
	}

	if txn.IsIncome() {
		if category, ok := structure.FirstOfType(model.CategoryTypeIncome); ok {
			return Match{Source: MatchIncomeFallback, Category: category}
		}
	}

	return Match{}
}

func matchingPattern(category model.BudgetCategory, key string) (string, bool) {
	for _, p := range category.Patterns {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" && strings.Contains(key, p) {
			return p, true
		}
	}
	return "", false
}

// UnmappedCategories returns, in sheet order, every category that no
// transaction in txns classifies into.
func (c *Classifier) UnmappedCategories(txns []model.Transaction, structure *model.SheetStructure) []model.BudgetCategory {
	if structure == nil {
		return nil
	}
	used := make(map[string]bool)
	for _, txn := range txns {
		if category, ok := c.Classify(txn, structure); ok {
			used[strings.ToUpper(category.Name)] = true
		}
	}

	var out []model.BudgetCategory
	for _, category := range structure.Categories {
		if !used[strings.ToUpper(category.Name)] {
			out = append(out, category)
		}
	}
	return out
}
