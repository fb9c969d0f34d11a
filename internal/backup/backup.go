// Package backup writes a downloaded budget tab to CSV, JSON or plain text.
package backup

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/budgetflow/internal/model"
)

// Format selects the output encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ErrUnknownFormat is returned for formats other than csv, json and text.
var ErrUnknownFormat = errors.New("unknown backup format")

// ParseFormat accepts a format name case-insensitively. "txt" is an alias
// for text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Snapshot is one downloaded tab.
type Snapshot struct {
	ExportedAt    time.Time  `json:"exported_at"`
	SpreadsheetID string     `json:"spreadsheet_id"`
	SheetName     string     `json:"sheet_name"`
	Rows          [][]string `json:"rows"`
}

// Options tune an export.
type Options struct {
	// OnRow is called once per written row.
	OnRow func()
	Format Format
}

// Write encodes the snapshot to w.
func Write(w io.Writer, snap Snapshot, opts Options) error {
	onRow := opts.OnRow
	if onRow == nil {
		onRow = func() {}
	}

	switch opts.Format {
	case FormatCSV:
		return writeCSV(w, snap.Rows, onRow)
	case FormatJSON:
		return writeJSON(w, snap, onRow)
	case FormatText:
		return writeText(w, snap.Rows, onRow)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
}

// writeCSV pads every row to the widest row so spreadsheet tools keep the
// columns aligned.
func writeCSV(w io.Writer, rows [][]string, onRow func()) error {
	width := maxWidth(rows)
	cw := csv.NewWriter(w)
	for i, row := range rows {
		if err := cw.Write(pad(row, width)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
		onRow()
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, snap Snapshot, onRow func()) error {
	if snap.Rows == nil {
		snap.Rows = [][]string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	for range snap.Rows {
		onRow()
	}
	return nil
}

// writeText renders the grid with A1 column letters across the top and
// 1-based row numbers down the left side.
func writeText(w io.Writer, rows [][]string, onRow func()) error {
	width := maxWidth(rows)
	colWidths := make([]int, width)
	for i := range colWidths {
		colWidths[i] = len(model.ColumnLetter(i + 1))
	}
	for _, row := range rows {
		for i, cell := range row {
			colWidths[i] = max(colWidths[i], utf8.RuneCountInString(cell))
		}
	}
	gutter := len(fmt.Sprint(len(rows)))

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutter))
	for i, cw := range colWidths {
		b.WriteString(" | ")
		b.WriteString(padRight(model.ColumnLetter(i+1), cw))
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range rows {
		b.Reset()
		b.WriteString(padLeft(fmt.Sprint(r+1), gutter))
		for i, cw := range colWidths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(" | ")
			b.WriteString(padRight(cell, cw))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
		onRow()
	}
	return nil
}

func maxWidth(rows [][]string) int {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	return width
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
