package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/budgetflow/internal/classification"
	"github.com/Veraticus/budgetflow/internal/model"
)

// summaryLabels mark total rows that are not categories.
var summaryLabels = []string{"summa", "total", "totalt"}

// LoadStructure reads the category and section columns of the tab from the
// first data row down. Sections carry forward to the rows below them. An
// empty tab yields the built-in structure.
func (c *Client) LoadStructure(ctx context.Context, spreadsheetID, sheetName string) (*model.SheetStructure, error) {
	layout := c.config.Layout
	first := min(layout.CategoryColumn, layout.SectionColumn)
	last := max(layout.CategoryColumn, layout.SectionColumn)
	rng := fmt.Sprintf("%s!%s%d:%s", quoteSheet(sheetName),
		model.ColumnLetter(first), layout.FirstDataRow, model.ColumnLetter(last))

	var resp *sheets.ValueRange
	err := c.call(ctx, "load structure "+rng, func() error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(spreadsheetID, rng).
			ValueRenderOption(renderFormatted).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	structure := StructureFromRows(layout, resp.Values)
	if len(structure.Categories) == 0 {
		c.logger.Warn("Budget tab has no categories, using built-in structure",
			"sheet", sheetName,
			"range", rng)
		structure = layout.DefaultStructure()
	}

	if err := structure.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheet structure: %w", err)
	}

	c.logger.Debug("Loaded sheet structure", "sheet", sheetName, "categories", len(structure.Categories))
	return structure, nil
}

// StructureFromRows builds a structure from the values of the category and
// section columns, starting at layout.FirstDataRow. Patterns come from the
// built-in category of the same name.
func StructureFromRows(layout Layout, rows [][]any) *model.SheetStructure {
	first := min(layout.CategoryColumn, layout.SectionColumn)
	catIdx := layout.CategoryColumn - first
	secIdx := layout.SectionColumn - first

	structure := &model.SheetStructure{
		YearRow:          layout.YearRow,
		MonthHeaderRow:   layout.MonthHeaderRow,
		IncomeRow:        layout.IncomeRow,
		FirstDataRow:     layout.FirstDataRow,
		MonthStartColumn: layout.MonthStartColumn,
	}

	section := ""
	for i, row := range rows {
		if s := strings.TrimSpace(cellAt(row, secIdx)); s != "" {
			section = s
		}
		name := strings.TrimSpace(cellAt(row, catIdx))
		if name == "" || isSummaryLabel(name) {
			continue
		}
		structure.Categories = append(structure.Categories, model.BudgetCategory{
			Name:     name,
			Section:  section,
			Type:     model.ParseCategoryType(section),
			Patterns: classification.PatternsFor(name),
			RowIndex: layout.FirstDataRow + i,
		})
	}

	return structure
}

func cellAt(row []any, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return cellText(row[i])
}

func isSummaryLabel(name string) bool {
	lower := strings.ToLower(name)
	for _, label := range summaryLabels {
		if lower == label || strings.HasPrefix(lower, label+" ") {
			return true
		}
	}
	return false
}
