package model

import (
	"errors"
	"fmt"
	"strings"
)

// Layout errors.
var (
	ErrInvalidColumn    = errors.New("column index must be at least 1")
	ErrDuplicateRow     = errors.New("duplicate category row")
	ErrInvalidRowLayout = errors.New("invalid row layout")
)

// CellRef identifies one grid cell. Row and Col are 1-based.
type CellRef struct {
	Row int
	Col int
}

// A1 returns the cell in spreadsheet notation, e.g. {5,3} -> "C5".
func (c CellRef) A1() string {
	return ColumnLetter(c.Col) + fmt.Sprint(c.Row)
}

func (c CellRef) String() string {
	return c.A1()
}

// SheetStructure is the layout contract of the budget tab.
type SheetStructure struct {
	Categories       []BudgetCategory
	YearRow          int
	IncomeRow        int
	MonthHeaderRow   int
	FirstDataRow     int
	MonthStartColumn int
}

// ColumnForMonth returns the 1-based column holding the given month.
func (s *SheetStructure) ColumnForMonth(month int) int {
	return s.MonthStartColumn + (month - 1)
}

// CellFor returns the cell that accumulates a category's total for a month.
func (s *SheetStructure) CellFor(category BudgetCategory, month int) CellRef {
	return CellRef{Row: category.RowIndex, Col: s.ColumnForMonth(month)}
}

// CategoryByName finds a category by case-insensitive name.
func (s *SheetStructure) CategoryByName(name string) (BudgetCategory, bool) {
	name = strings.TrimSpace(name)
	for _, c := range s.Categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return BudgetCategory{}, false
}

// FirstOfType returns the first category with the given type.
func (s *SheetStructure) FirstOfType(t CategoryType) (BudgetCategory, bool) {
	for _, c := range s.Categories {
		if c.Type == t {
			return c, true
		}
	}
	return BudgetCategory{}, false
}

// Validate checks the row offsets and that every category owns a unique row
// at or below the first data row, clear of the header rows.
func (s *SheetStructure) Validate() error {
	if s.MonthStartColumn < 1 {
		return fmt.Errorf("%w: month start column %d", ErrInvalidColumn, s.MonthStartColumn)
	}
	if s.FirstDataRow < 1 {
		return fmt.Errorf("%w: first data row %d", ErrInvalidRowLayout, s.FirstDataRow)
	}
	seen := make(map[int]string, len(s.Categories))
	for _, c := range s.Categories {
		if c.RowIndex < s.FirstDataRow {
			return fmt.Errorf("%w: category %q has row %d above first data row %d",
				ErrInvalidRowLayout, c.Name, c.RowIndex, s.FirstDataRow)
		}
		switch c.RowIndex {
		case s.YearRow, s.MonthHeaderRow, s.IncomeRow:
			return fmt.Errorf("%w: category %q is on header row %d", ErrInvalidRowLayout, c.Name, c.RowIndex)
		}
		if other, ok := seen[c.RowIndex]; ok {
			return fmt.Errorf("%w: %d used by %q and %q", ErrDuplicateRow, c.RowIndex, other, c.Name)
		}
		seen[c.RowIndex] = c.Name
	}
	return nil
}

// ColumnLetter converts a 1-based column index to letters: 1->A, 26->Z,
// 27->AA, 52->AZ. Indices below 1 yield an empty string.
func ColumnLetter(index int) string {
	if index < 1 {
		return ""
	}
	var buf []byte
	for index > 0 {
		index--
		buf = append(buf, byte('A'+index%26))
		index /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ColumnIndex is the inverse of ColumnLetter.
func ColumnIndex(letters string) (int, error) {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	if letters == "" {
		return 0, ErrInvalidColumn
	}
	index := 0
	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidColumn, letters)
		}
		index = index*26 + int(r-'A'+1)
	}
	return index, nil
}
