// Package testutil provides fixture builders shared by the package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budgetflow/internal/model"
)

// NewTransaction builds a transaction booked on date (YYYY-MM-DD) with the
// given reference and amount. An empty date leaves the sentinel zero date.
func NewTransaction(t testing.TB, date, reference, amount string) model.Transaction {
	t.Helper()

	txn := model.Transaction{
		Reference: reference,
		Currency:  "SEK",
		Amount:    decimal.RequireFromString(amount),
	}
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			t.Fatalf("bad fixture date %q: %v", date, err)
		}
		txn.BookingDate = d
		txn.TransactionDate = d
		txn.CurrencyDate = d
	}
	return txn
}

// Dec parses a decimal literal or fails the test.
func Dec(t testing.TB, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad fixture decimal %q: %v", s, err)
	}
	return d
}

// StructureBuilder assembles a SheetStructure with categories on
// consecutive rows.
type StructureBuilder struct {
	structure model.SheetStructure
	nextRow   int
}

// NewStructure starts a layout with months from column C and data from row 5.
func NewStructure() *StructureBuilder {
	return &StructureBuilder{
		structure: model.SheetStructure{
			YearRow:          1,
			MonthHeaderRow:   2,
			IncomeRow:        3,
			FirstDataRow:     5,
			MonthStartColumn: 3,
		},
		nextRow: 5,
	}
}

// WithCategory appends a category on the next free row. Its type follows
// the section label.
func (b *StructureBuilder) WithCategory(name, section string, patterns ...string) *StructureBuilder {
	b.structure.Categories = append(b.structure.Categories, model.BudgetCategory{
		Name:     name,
		Section:  section,
		Type:     model.ParseCategoryType(section),
		Patterns: patterns,
		RowIndex: b.nextRow,
	})
	b.nextRow++
	return b
}

// WithBasicCategories adds a small household budget.
func (b *StructureBuilder) WithBasicCategories() *StructureBuilder {
	return b.
		WithCategory("Lön", "Inkomster", "LÖN").
		WithCategory("Hyra", "Gemensamt", "HYRA").
		WithCategory("Mat", "Gemensamt", "ICA", "COOP", "WILLYS").
		WithCategory("Mobil", "Personligt", "TELE2").
		WithCategory("Streaming", "Personligt", "NETFLIX", "SPOTIFY").
		WithCategory("Buffert", "Sparande", "SPARKONTO")
}

// Build returns the structure.
func (b *StructureBuilder) Build() *model.SheetStructure {
	s := b.structure
	s.Categories = append([]model.BudgetCategory(nil), b.structure.Categories...)
	return &s
}

// MustCategory returns the named category or fails the test.
func MustCategory(t testing.TB, s *model.SheetStructure, name string) model.BudgetCategory {
	t.Helper()
	c, ok := s.CategoryByName(name)
	if !ok {
		t.Fatalf("category %q not in structure", name)
	}
	return c
}
