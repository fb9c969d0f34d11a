package model

import "strings"

// CategoryType tells what kind of money flows through a budget category.
type CategoryType string

const (
	// CategoryTypeIncome represents salary and other inflows.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeSharedExpense represents household expenses split between people.
	CategoryTypeSharedExpense CategoryType = "shared_expense"
	// CategoryTypePersonalExpense represents expenses carried by one person.
	CategoryTypePersonalExpense CategoryType = "personal_expense"
	// CategoryTypeSavings represents transfers into savings.
	CategoryTypeSavings CategoryType = "savings"
	// CategoryTypeOther is everything else.
	CategoryTypeOther CategoryType = "other"
)

// BudgetCategory is a named row of the budget sheet.
type BudgetCategory struct {
	Name     string
	Section  string
	Type     CategoryType
	Patterns []string
	RowIndex int
}

// Matches reports whether any of the category's own patterns is a
// case-insensitive substring of key.
func (c BudgetCategory) Matches(key string) bool {
	upper := strings.ToUpper(key)
	for _, p := range c.Patterns {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}

var sectionTypes = map[string]CategoryType{
	"income":     CategoryTypeIncome,
	"inkomst":    CategoryTypeIncome,
	"inkomster":  CategoryTypeIncome,
	"shared":     CategoryTypeSharedExpense,
	"gemensamt":  CategoryTypeSharedExpense,
	"gemensamma": CategoryTypeSharedExpense,
	"personal":   CategoryTypePersonalExpense,
	"personligt": CategoryTypePersonalExpense,
	"personliga": CategoryTypePersonalExpense,
	"savings":    CategoryTypeSavings,
	"sparande":   CategoryTypeSavings,
}

// ParseCategoryType maps a section label from the sheet to a CategoryType.
// Unknown labels map to CategoryTypeOther.
func ParseCategoryType(section string) CategoryType {
	if t, ok := sectionTypes[strings.ToLower(strings.TrimSpace(section))]; ok {
		return t
	}
	return CategoryTypeOther
}
