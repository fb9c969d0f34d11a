package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategoryType(t *testing.T) {
	tests := []struct {
		section string
		want    CategoryType
	}{
		{section: "Inkomster", want: CategoryTypeIncome},
		{section: " income ", want: CategoryTypeIncome},
		{section: "Gemensamt", want: CategoryTypeSharedExpense},
		{section: "shared", want: CategoryTypeSharedExpense},
		{section: "Personligt", want: CategoryTypePersonalExpense},
		{section: "SPARANDE", want: CategoryTypeSavings},
		{section: "Övrigt", want: CategoryTypeOther},
		{section: "", want: CategoryTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategoryType(tt.section))
		})
	}
}

func TestBudgetCategory_Matches(t *testing.T) {
	food := BudgetCategory{Name: "Mat", Patterns: []string{"ica", " WILLYS ", ""}}

	assert.True(t, food.Matches("ICA MAXI LINKÖPING"))
	assert.True(t, food.Matches("willys hemma"))
	assert.False(t, food.Matches("NETFLIX"))
	assert.False(t, BudgetCategory{Name: "Övrigt"}.Matches("ANYTHING"))
}
