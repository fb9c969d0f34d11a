package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/service"
	"github.com/Veraticus/budgetflow/internal/testutil"
)

func testReport(t *testing.T, written bool) *service.SyncReport {
	t.Helper()
	mat := testutil.MustCategory(t, testutil.NewStructure().WithBasicCategories().Build(), "Mat")

	return &service.SyncReport{
		Total: decimal.RequireFromString("-1059.50"),
		Groups: []service.GroupTotal{
			{
				Category: mat,
				Month:    3,
				Cell:     model.CellRef{Row: mat.RowIndex, Col: 5},
				Count:    3,
				Total:    decimal.RequireFromString("759.5"),
				Previous: decimal.NewFromInt(100),
				New:      decimal.RequireFromString("859.5"),
			},
		},
		Unmapped: []model.Transaction{
			testutil.NewTransaction(t, "2024-03-12", "OKAND BUTIK", "-300.00"),
			testutil.NewTransaction(t, "", "", "-0.50"),
		},
		Transactions: 5,
		Written:      written,
		DryRun:       !written,
	}
}

func TestFormatMonth(t *testing.T) {
	tests := []struct {
		want  string
		month int
	}{
		{month: 1, want: "01"},
		{month: 9, want: "09"},
		{month: 12, want: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMonth(tt.month))
		})
	}
}

func TestRenderGroups(t *testing.T) {
	tests := []struct {
		name        string
		contains    []string
		notContains []string
		written     bool
	}{
		{
			name:     "written shows previous and new",
			written:  true,
			contains: []string{"Mat", "03", "E7", "759.50", "100.00", "859.50", "Previous"},
		},
		{
			name:        "dry run shows totals only",
			written:     false,
			contains:    []string{"Mat", "03", "759.50"},
			notContains: []string{"Previous", "859.50"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderGroups(testReport(t, tt.written))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRenderUnmapped(t *testing.T) {
	out := RenderUnmapped(testReport(t, false).Unmapped)

	assert.Contains(t, out, "2024-03-12")
	assert.Contains(t, out, "OKAND BUTIK")
	assert.Contains(t, out, "-300.00")
	lines := strings.Split(out, "\n")
	var sentinel string
	for _, l := range lines {
		if strings.Contains(l, "-0.50") {
			sentinel = l
		}
	}
	assert.True(t, strings.HasPrefix(strings.TrimSpace(sentinel), "-"), "missing dates render as a dash: %q", sentinel)
}

func TestRenderReport(t *testing.T) {
	dry := RenderReport(testReport(t, false))
	assert.Contains(t, dry, "dry run")
	assert.Contains(t, dry, "5 transactions, 3 mapped, 2 unmapped, total -1059.50")
	assert.Contains(t, dry, "2 unmapped transactions")

	live := RenderReport(testReport(t, true))
	assert.Contains(t, live, "Updated 1 cells")
	assert.NotContains(t, live, "(dry run)")
}

func TestRenderCategories(t *testing.T) {
	structure := testutil.NewStructure().WithBasicCategories().Build()
	usage := []CategoryUsage{
		{Category: testutil.MustCategory(t, structure, "Hyra"), Count: 2},
		{Category: testutil.MustCategory(t, structure, "Streaming")},
	}

	out := RenderCategories(usage)
	assert.Contains(t, out, "Hyra")
	assert.Contains(t, out, "shared_expense")
	assert.Contains(t, out, "unused")
}

func TestRenderRuns(t *testing.T) {
	runs := []model.SyncRun{
		{
			ID:           "0123456789abcdef",
			StartedAt:    time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			FileName:     "export.csv",
			SheetName:    "2024",
			Transactions: 5,
			Unmapped:     2,
			Total:        decimal.RequireFromString("-1059.5"),
		},
		{ID: "short", FileName: "dry.csv", DryRun: true},
	}

	out := RenderRuns(runs)
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "export.csv")
	assert.Contains(t, out, "-1059.50")
	assert.Contains(t, out, "dry run")
	assert.Contains(t, out, "live")
}

func TestRenderRun(t *testing.T) {
	run := &model.SyncRun{
		ID:            "run-1",
		FileName:      "export.csv",
		SpreadsheetID: "sheet-123",
		SheetName:     "2024",
		Total:         decimal.NewFromInt(-100),
		Cells: []model.CellChange{
			{Cell: model.CellRef{Row: 7, Col: 5}, Previous: decimal.Zero, Added: decimal.NewFromInt(100), New: decimal.NewFromInt(100)},
		},
	}

	out := RenderRun(run)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "sheet-123 / 2024")
	assert.Contains(t, out, "E7")

	run.DryRun = true
	assert.Contains(t, RenderRun(run), "no cells written")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "abcdefgh", ShortID("abcdefghijkl"))
}
