// Package bankcsv reads the semicolon or comma separated transaction exports
// produced by Swedish banks.
package bankcsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budgetflow/internal/model"
)

// File-level errors. Problems with single rows never surface as errors.
var (
	ErrEmptyInput    = errors.New("export is empty")
	ErrMissingHeader = errors.New("export has no recognizable header row")
)

// dateLayouts are tried in order after the primary YYYY-MM-DD form.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"20060102",
	time.RFC3339,
}

// RowResult is the outcome of one data row: either a transaction or the
// reason it was skipped.
type RowResult struct {
	Skipped     string
	Transaction model.Transaction
	Line        int
}

// OK reports whether the row produced a transaction.
func (r RowResult) OK() bool {
	return r.Skipped == ""
}

// Result is a fully read export.
type Result struct {
	Encoding  string
	Rows      []RowResult
	Delimiter rune
}

// Transactions returns the parsed transactions in ascending booking-date
// order. Rows without a usable booking date sort first.
func (r *Result) Transactions() []model.Transaction {
	out := make([]model.Transaction, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.OK() {
			out = append(out, row.Transaction)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BookingDate.Before(out[j].BookingDate)
	})
	return out
}

// Skipped returns the rows that did not produce a transaction.
func (r *Result) Skipped() []RowResult {
	var out []RowResult
	for _, row := range r.Rows {
		if !row.OK() {
			out = append(out, row)
		}
	}
	return out
}

// Parser decodes bank exports into transactions.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger uses slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse reads an export and returns its transactions sorted by booking date.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]model.Transaction, error) {
	result, err := p.ParseRows(ctx, r)
	if err != nil {
		return nil, err
	}
	txns := result.Transactions()

	p.logger.Info("Parsed bank export",
		"transactions", len(txns),
		"skipped", len(result.Rows)-len(txns),
		"encoding", result.Encoding)

	return txns, nil
}

// ParseRows reads an export and reports every data row individually.
// The first line of the export is metadata and is discarded; the second is
// the header.
func (p *Parser) ParseRows(ctx context.Context, r io.Reader) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, ErrEmptyInput
	}

	text, encoding, err := decode(raw)
	if err != nil {
		return nil, err
	}

	body, ok := splitMetadata(text)
	if !ok || strings.TrimSpace(body) == "" {
		return nil, ErrMissingHeader
	}

	delimiter := detectDelimiter(firstLine(body))
	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	fields, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingHeader, err)
	}
	hdr := newHeader(fields)
	if hdr.known() == 0 {
		return nil, ErrMissingHeader
	}

	result := &Result{Encoding: encoding, Delimiter: delimiter}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to read export: %w", err)
			}
			result.Rows = append(result.Rows, p.skip(parseErr.Line+1, err.Error()))
			continue
		}
		if isBlank(record) {
			continue
		}

		// The metadata line was cut off, so csv line n is file line n+1.
		line, _ := reader.FieldPos(0)
		line++

		txn, err := p.parseRecord(hdr, record, line)
		if err != nil {
			result.Rows = append(result.Rows, p.skip(line, err.Error()))
			continue
		}
		result.Rows = append(result.Rows, RowResult{Line: line, Transaction: txn})
	}

	return result, nil
}

func (p *Parser) skip(line int, reason string) RowResult {
	p.logger.Warn("Skipping unreadable row", "line", line, "reason", reason)
	return RowResult{Line: line, Skipped: reason}
}

// parseRecord builds a transaction from one record. Absent or malformed
// optional values fall back to zero; only a record too short for the header
// is rejected.
func (p *Parser) parseRecord(hdr header, record []string, line int) (model.Transaction, error) {
	if len(record) < hdr.width {
		return model.Transaction{}, fmt.Errorf("row has %d fields, header has %d", len(record), hdr.width)
	}

	field := func(c column) string {
		i, ok := hdr.position(c)
		if !ok {
			return ""
		}
		return record[i]
	}

	txn := model.Transaction{
		RowNumber:       parseInt(field(colRowNumber)),
		ClearingNumber:  cleanText(field(colClearingNumber)),
		AccountNumber:   cleanText(field(colAccountNumber)),
		Product:         cleanText(field(colProduct)),
		Currency:        cleanText(field(colCurrency)),
		BookingDate:     parseDate(field(colBookingDate)),
		TransactionDate: parseDate(field(colTransactionDate)),
		CurrencyDate:    parseDate(field(colCurrencyDate)),
		Reference:       cleanText(field(colReference)),
		Description:     cleanText(field(colDescription)),
		Amount:          parseDecimal(field(colAmount)),
		BookedBalance:   parseDecimal(field(colBookedBalance)),
	}

	if !txn.HasBookingDate() {
		p.logger.Warn("Booking date missing or unreadable, using sentinel date",
			"line", line,
			"value", field(colBookingDate),
			"reference", txn.Reference)
	}

	return txn, nil
}

// parseDate never fails; unreadable dates become the zero time.
func parseDate(s string) time.Time {
	s = cleanText(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseDecimal(s string) decimal.Decimal {
	d, _ := model.ParseAmount(s)
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(cleanText(s))
	if err != nil {
		return 0
	}
	return n
}

// cleanText strips embedded quotes and surrounding whitespace.
func cleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
