// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budgetflow/internal/model"
)

// TransactionReader turns an exported statement into transactions.
type TransactionReader interface {
	Parse(ctx context.Context, r io.Reader) ([]model.Transaction, error)
}

// StructureLoader reads the layout of a budget tab.
type StructureLoader interface {
	LoadStructure(ctx context.Context, spreadsheetID, sheetName string) (*model.SheetStructure, error)
}

// CellReader reads numeric cells. Cells that were never written read as zero.
type CellReader interface {
	GetCell(ctx context.Context, spreadsheetID, sheetName string, cell model.CellRef) (decimal.Decimal, error)
	BatchGetCells(ctx context.Context, spreadsheetID, sheetName string, cells []model.CellRef) (map[model.CellRef]decimal.Decimal, error)
}

// CellWriter writes numeric cells.
type CellWriter interface {
	SetCell(ctx context.Context, spreadsheetID, sheetName string, cell model.CellRef, value decimal.Decimal) error
	BatchSetCells(ctx context.Context, spreadsheetID, sheetName string, updates map[model.CellRef]decimal.Decimal) error
}

// RowDownloader dumps a whole tab as text.
type RowDownloader interface {
	DownloadAllRows(ctx context.Context, spreadsheetID, sheetName string) ([][]string, error)
}

// GridStore is the full remote spreadsheet capability.
type GridStore interface {
	StructureLoader
	CellReader
	CellWriter
	RowDownloader
}

// RuleSource supplies the mapping rules for a run. It never fails; an
// unusable source yields the built-in rules.
type RuleSource interface {
	LoadRules(ctx context.Context) *model.RuleSet
}

// RunLedger keeps the history of sync runs.
type RunLedger interface {
	RecordRun(ctx context.Context, run *model.SyncRun) error
	// FindLiveRun returns the most recent non-dry run of the given file
	// against the given tab, or common.ErrNotFound.
	FindLiveRun(ctx context.Context, fileHash, spreadsheetID, sheetName string) (*model.SyncRun, error)
	ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error)
	GetRun(ctx context.Context, id string) (*model.SyncRun, error)
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// GroupTotal is the aggregate of one category in one month.
type GroupTotal struct {
	Category model.BudgetCategory
	Total    decimal.Decimal
	Previous decimal.Decimal
	New      decimal.Decimal
	Cell     model.CellRef
	Month    int
	Count    int
}

// SyncReport describes the outcome of aggregating one batch of transactions.
type SyncReport struct {
	Total        decimal.Decimal
	Groups       []GroupTotal
	Unmapped     []model.Transaction
	Transactions int
	DryRun       bool
	Written      bool
}

// Mapped returns the number of transactions that landed in a category.
func (r *SyncReport) Mapped() int {
	n := 0
	for _, g := range r.Groups {
		n += g.Count
	}
	return n
}

// Changes converts the report's groups into per-cell ledger entries.
func (r *SyncReport) Changes() []model.CellChange {
	out := make([]model.CellChange, 0, len(r.Groups))
	for _, g := range r.Groups {
		out = append(out, model.CellChange{
			Cell:     g.Cell,
			Previous: g.Previous,
			Added:    g.Total,
			New:      g.New,
		})
	}
	return out
}
