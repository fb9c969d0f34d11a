package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/budgetflow/internal/model"
)

func TestDefaultStructure(t *testing.T) {
	s := DefaultStructure()
	require.NoError(t, s.Validate())

	assert.Equal(t, DefaultFirstDataRow, s.Categories[0].RowIndex)
	for i, c := range s.Categories {
		assert.Equal(t, DefaultFirstDataRow+i, c.RowIndex, c.Name)
		assert.Equal(t, model.ParseCategoryType(c.Section), c.Type, c.Name)
	}

	income, ok := s.FirstOfType(model.CategoryTypeIncome)
	require.True(t, ok)
	assert.Equal(t, "Lön", income.Name)

	assert.Equal(t, "C5", s.CellFor(s.Categories[0], 1).A1())
}

func TestDefaultCategories_ReturnsCopies(t *testing.T) {
	first := DefaultCategories()
	first[0].Patterns[0] = "MUTATED"
	assert.NotEqual(t, "MUTATED", DefaultCategories()[0].Patterns[0])
}

func TestDefaultCategoriesAt(t *testing.T) {
	cats := DefaultCategoriesAt(10)
	require.Len(t, cats, len(DefaultCategories()))
	for i, c := range cats {
		assert.Equal(t, 10+i, c.RowIndex, c.Name)
	}
	assert.Equal(t, "Lön", cats[0].Name)
}

func TestDefaultRuleSet_TargetsKnownCategories(t *testing.T) {
	s := DefaultStructure()
	rs := DefaultRuleSet()
	require.Positive(t, rs.Len())
	assert.Equal(t, BuiltInSource, rs.Source())

	for _, r := range rs.Rules() {
		_, ok := s.CategoryByName(r.Category)
		assert.True(t, ok, "rule %s points at unknown category %s", r.Pattern, r.Category)
	}
}

func TestPatternsFor(t *testing.T) {
	assert.Contains(t, PatternsFor("mat"), "ICA")
	assert.Nil(t, PatternsFor("Okänd"))
}
