package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/service"
)

const (
	dateLayout    = "2006-01-02"
	shortIDLength = 8
)

// newTable builds a borderless table with the shared header and cell
// styles. Columns listed in amountCols are right-aligned.
func newTable(headers []string, rows [][]string, amountCols ...int) *table.Table {
	right := make(map[int]bool, len(amountCols))
	for _, c := range amountCols {
		right[c] = true
	}

	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case right[col]:
				return AmountCellStyle
			default:
				return TableCellStyle
			}
		})
}

// FormatMonth renders a month as two digits.
func FormatMonth(month int) string {
	return fmt.Sprintf("%02d", month)
}

func formatDate(txn model.Transaction) string {
	if !txn.HasBookingDate() {
		return "-"
	}
	return txn.BookingDate.Format(dateLayout)
}

// RenderGroups lists every (category, month) total of a report.
func RenderGroups(report *service.SyncReport) string {
	headers := []string{"Category", "Month", "Cell", "Count", "Total"}
	if report.Written {
		headers = append(headers, "Previous", "New")
	}

	rows := make([][]string, 0, len(report.Groups))
	for _, g := range report.Groups {
		row := []string{
			g.Category.Name,
			FormatMonth(g.Month),
			g.Cell.A1(),
			fmt.Sprint(g.Count),
			g.Total.StringFixed(2),
		}
		if report.Written {
			row = append(row, g.Previous.StringFixed(2), g.New.StringFixed(2))
		}
		rows = append(rows, row)
	}

	amountCols := []int{3, 4, 5, 6}
	return newTable(headers, rows, amountCols...).String()
}

// RenderUnmapped lists transactions that no category claimed.
func RenderUnmapped(txns []model.Transaction) string {
	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, []string{
			formatDate(txn),
			txn.Description,
			txn.Amount.StringFixed(2),
			txn.Reference,
		})
	}
	return newTable([]string{"Date", "Description", "Amount", "Reference"}, rows, 2).String()
}

// RenderReport renders the full outcome of a sync: grouped totals, a
// summary line and the unmapped transactions.
func RenderReport(report *service.SyncReport) string {
	var b strings.Builder

	title := "Sync Report"
	if report.DryRun {
		title += " (dry run)"
	}
	b.WriteString(FormatTitle(title))
	b.WriteString("\n")

	if len(report.Groups) > 0 {
		b.WriteString(RenderGroups(report))
		b.WriteString("\n\n")
	}

	summary := fmt.Sprintf("%d transactions, %d mapped, %d unmapped, total %s",
		report.Transactions, report.Mapped(), len(report.Unmapped), report.Total.StringFixed(2))
	switch {
	case report.Written:
		b.WriteString(FormatSuccess(fmt.Sprintf("Updated %d cells: %s", len(report.Groups), summary)))
	case report.DryRun:
		b.WriteString(FormatWarning("Dry run, nothing written: " + summary))
	default:
		b.WriteString(summary)
	}

	if len(report.Unmapped) > 0 {
		b.WriteString("\n\n")
		b.WriteString(FormatWarning(fmt.Sprintf("%d unmapped transactions", len(report.Unmapped))))
		b.WriteString("\n")
		b.WriteString(RenderUnmapped(report.Unmapped))
	}

	return b.String()
}

// CategoryUsage is one category row of the categories command.
type CategoryUsage struct {
	Category model.BudgetCategory
	Count    int
}

// RenderCategories lists the categories of a structure with how many
// transactions each one received.
func RenderCategories(usage []CategoryUsage) string {
	rows := make([][]string, 0, len(usage))
	for _, u := range usage {
		count := fmt.Sprint(u.Count)
		if u.Count == 0 {
			count = SubtleStyle.Render("unused")
		}
		rows = append(rows, []string{
			fmt.Sprint(u.Category.RowIndex),
			u.Category.Name,
			u.Category.Section,
			string(u.Category.Type),
			count,
		})
	}
	return newTable([]string{"Row", "Category", "Section", "Type", "Transactions"}, rows, 0, 4).String()
}

// RenderRuns lists ledger entries, newest first.
func RenderRuns(runs []model.SyncRun) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		mode := "live"
		if run.DryRun {
			mode = "dry run"
		}
		rows = append(rows, []string{
			ShortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.FileName,
			run.SheetName,
			fmt.Sprint(run.Transactions),
			fmt.Sprint(run.Unmapped),
			run.Total.StringFixed(2),
			mode,
		})
	}
	return newTable([]string{"ID", "Started", "File", "Sheet", "Txns", "Unmapped", "Total", "Mode"}, rows, 4, 5, 6).String()
}

// RenderRun shows one ledger entry with its cell changes.
func RenderRun(run *model.SyncRun) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%-14s%s\n", label+":", value)
	}
	field("Run", run.ID)
	field("Started", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	field("File", run.FileName)
	field("Target", run.SpreadsheetID+" / "+run.SheetName)
	field("Transactions", fmt.Sprintf("%d (%d mapped, %d unmapped)", run.Transactions, run.Mapped, run.Unmapped))
	field("Total", run.Total.StringFixed(2))
	if run.DryRun {
		b.WriteString(SubtleStyle.Render("Dry run, no cells written"))
		return RenderBox("Sync Run", b.String())
	}

	rows := make([][]string, 0, len(run.Cells))
	for _, c := range run.Cells {
		rows = append(rows, []string{
			c.Cell.A1(),
			c.Previous.StringFixed(2),
			c.Added.StringFixed(2),
			c.New.StringFixed(2),
		})
	}
	b.WriteString(newTable([]string{"Cell", "Previous", "Added", "New"}, rows, 1, 2, 3).String())
	return RenderBox("Sync Run", b.String())
}

// ShortID abbreviates a run id for listings.
func ShortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
