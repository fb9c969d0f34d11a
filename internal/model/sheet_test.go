package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		want  string
		index int
	}{
		{index: 1, want: "A"},
		{index: 3, want: "C"},
		{index: 26, want: "Z"},
		{index: 27, want: "AA"},
		{index: 52, want: "AZ"},
		{index: 53, want: "BA"},
		{index: 702, want: "ZZ"},
		{index: 703, want: "AAA"},
		{index: 0, want: ""},
		{index: -4, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnLetter(tt.index))
		})
	}
}

func TestColumnIndex(t *testing.T) {
	for _, index := range []int{1, 2, 25, 26, 27, 52, 53, 702, 703, 16384} {
		got, err := ColumnIndex(ColumnLetter(index))
		require.NoError(t, err)
		assert.Equal(t, index, got)
	}

	got, err := ColumnIndex(" az ")
	require.NoError(t, err)
	assert.Equal(t, 52, got)

	_, err = ColumnIndex("")
	require.ErrorIs(t, err, ErrInvalidColumn)

	_, err = ColumnIndex("A1")
	require.ErrorIs(t, err, ErrInvalidColumn)
}

func TestSheetStructure_Addressing(t *testing.T) {
	food := BudgetCategory{Name: "Mat", RowIndex: 5, Type: CategoryTypeSharedExpense}
	s := &SheetStructure{MonthStartColumn: 3, FirstDataRow: 5, Categories: []BudgetCategory{food}}

	tests := []struct {
		want  string
		month int
	}{
		{month: 1, want: "C5"},
		{month: 2, want: "D5"},
		{month: 12, want: "N5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cell := s.CellFor(food, tt.month)
			assert.Equal(t, tt.want, cell.A1())
			assert.Equal(t, ColumnLetter(s.ColumnForMonth(tt.month))+"5", cell.String())
		})
	}
}

func TestSheetStructure_Lookup(t *testing.T) {
	s := &SheetStructure{
		Categories: []BudgetCategory{
			{Name: "Hyra", RowIndex: 5, Type: CategoryTypeSharedExpense},
			{Name: "Lön", RowIndex: 6, Type: CategoryTypeIncome},
			{Name: "Bonus", RowIndex: 7, Type: CategoryTypeIncome},
		},
	}

	c, ok := s.CategoryByName(" hyra ")
	require.True(t, ok)
	assert.Equal(t, 5, c.RowIndex)

	_, ok = s.CategoryByName("Mat")
	assert.False(t, ok)

	c, ok = s.FirstOfType(CategoryTypeIncome)
	require.True(t, ok)
	assert.Equal(t, "Lön", c.Name)

	_, ok = s.FirstOfType(CategoryTypeSavings)
	assert.False(t, ok)
}

func TestSheetStructure_Validate(t *testing.T) {
	tests := []struct {
		wantErr   error
		structure SheetStructure
		name      string
	}{
		{
			name: "valid layout",
			structure: SheetStructure{
				MonthStartColumn: 3,
				FirstDataRow:     5,
				Categories:       []BudgetCategory{{Name: "A", RowIndex: 5}, {Name: "B", RowIndex: 6}},
			},
		},
		{
			name: "duplicate rows",
			structure: SheetStructure{
				MonthStartColumn: 3,
				FirstDataRow:     5,
				Categories:       []BudgetCategory{{Name: "A", RowIndex: 5}, {Name: "B", RowIndex: 5}},
			},
			wantErr: ErrDuplicateRow,
		},
		{
			name:      "month column before A",
			structure: SheetStructure{MonthStartColumn: 0, FirstDataRow: 5},
			wantErr:   ErrInvalidColumn,
		},
		{
			name: "category above first data row",
			structure: SheetStructure{
				MonthStartColumn: 3,
				FirstDataRow:     10,
				Categories:       []BudgetCategory{{Name: "A", RowIndex: 5}},
			},
			wantErr: ErrInvalidRowLayout,
		},
		{
			name: "category on year row",
			structure: SheetStructure{
				MonthStartColumn: 3,
				YearRow:          6,
				FirstDataRow:     5,
				Categories:       []BudgetCategory{{Name: "A", RowIndex: 5}, {Name: "B", RowIndex: 6}},
			},
			wantErr: ErrInvalidRowLayout,
		},
		{
			name: "category on month header row",
			structure: SheetStructure{
				MonthStartColumn: 3,
				MonthHeaderRow:   7,
				FirstDataRow:     5,
				Categories:       []BudgetCategory{{Name: "A", RowIndex: 7}},
			},
			wantErr: ErrInvalidRowLayout,
		},
		{
			name: "category without row",
			structure: SheetStructure{
				MonthStartColumn: 3,
				FirstDataRow:     5,
				Categories:       []BudgetCategory{{Name: "A"}},
			},
			wantErr: ErrInvalidRowLayout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.structure.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
