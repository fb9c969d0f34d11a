// Package engine aggregates classified transactions into per-category,
// per-month totals and adds them onto the budget sheet.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budgetflow/internal/common"
	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/service"
)

// Target names the budget tab a sync writes to.
type Target struct {
	SpreadsheetID string
	SheetName     string
}

// Options controls a single sync.
type Options struct {
	// DryRun classifies and aggregates without any remote call.
	DryRun bool
}

// SyncEngine orchestrates classification, aggregation and write-back.
type SyncEngine struct {
	store      CellStore
	classifier Classifier
	logger     *slog.Logger
}

// New creates a sync engine. A nil logger uses slog.Default().
func New(store CellStore, classifier Classifier, logger *slog.Logger) *SyncEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncEngine{
		store:      store,
		classifier: classifier,
		logger:     logger,
	}
}

type groupKey struct {
	row   int
	month int
}

// Aggregate classifies txns and sums absolute amounts per category and
// booking month. It makes no remote calls; Previous and New are left zero.
func (e *SyncEngine) Aggregate(txns []model.Transaction, structure *model.SheetStructure) *service.SyncReport {
	report := &service.SyncReport{Transactions: len(txns)}
	groups := make(map[groupKey]*service.GroupTotal)
	years := make(map[int]bool)

	for _, txn := range txns {
		category, ok := e.classifier.Classify(txn, structure)
		if !ok {
			report.Unmapped = append(report.Unmapped, txn)
			continue
		}

		if txn.HasBookingDate() {
			years[txn.Year()] = true
		} else {
			e.logger.Warn("Aggregating transaction without booking date into January",
				"row", txn.RowNumber,
				"reference", txn.Reference,
				"category", category.Name)
		}

		month := txn.Month()
		key := groupKey{row: category.RowIndex, month: month}
		g, exists := groups[key]
		if !exists {
			g = &service.GroupTotal{
				Category: category,
				Month:    month,
				Cell:     structure.CellFor(category, month),
			}
			groups[key] = g
		}
		g.Total = g.Total.Add(txn.AbsoluteAmount())
		g.Count++
	}

	if len(years) > 1 {
		e.logger.Warn("Transactions span several years; totals are combined per month",
			"years", sortedYears(years))
	}

	report.Groups = make([]service.GroupTotal, 0, len(groups))
	for _, g := range groups {
		report.Groups = append(report.Groups, *g)
	}
	sort.Slice(report.Groups, func(i, j int) bool {
		a, b := report.Groups[i], report.Groups[j]
		if a.Category.RowIndex != b.Category.RowIndex {
			return a.Category.RowIndex < b.Category.RowIndex
		}
		return a.Month < b.Month
	})

	sort.SliceStable(report.Unmapped, func(i, j int) bool {
		return report.Unmapped[i].BookingDate.Before(report.Unmapped[j].BookingDate)
	})

	for _, g := range report.Groups {
		report.Total = report.Total.Add(g.Total)
	}

	return report
}

// Sync aggregates txns and adds each group total onto its cell. Current
// values are read in one call and new values written in one call; a single
// touched cell uses the single-cell calls. Remote failures are returned
// wrapped in common.ErrRemoteStore and nothing is retried here.
func (e *SyncEngine) Sync(ctx context.Context, target Target, txns []model.Transaction, structure *model.SheetStructure, opts Options) (*service.SyncReport, error) {
	report := e.Aggregate(txns, structure)
	report.DryRun = opts.DryRun

	e.logger.Info("Aggregated transactions",
		"transactions", report.Transactions,
		"groups", len(report.Groups),
		"unmapped", len(report.Unmapped),
		"dry_run", opts.DryRun)

	if opts.DryRun || len(report.Groups) == 0 {
		return report, nil
	}

	cells := make([]model.CellRef, len(report.Groups))
	for i, g := range report.Groups {
		cells[i] = g.Cell
	}

	current, err := e.readCells(ctx, target, cells)
	if err != nil {
		return nil, err
	}

	updates := make(map[model.CellRef]decimal.Decimal, len(report.Groups))
	for i := range report.Groups {
		g := &report.Groups[i]
		g.Previous = current[g.Cell]
		g.New = g.Previous.Add(g.Total)
		updates[g.Cell] = g.New
	}

	if err := e.writeCells(ctx, target, updates); err != nil {
		return nil, err
	}
	report.Written = true

	e.logger.Info("Updated budget sheet",
		"spreadsheet", target.SpreadsheetID,
		"sheet", target.SheetName,
		"cells", len(updates))

	return report, nil
}

func (e *SyncEngine) readCells(ctx context.Context, target Target, cells []model.CellRef) (map[model.CellRef]decimal.Decimal, error) {
	if len(cells) == 1 {
		value, err := e.store.GetCell(ctx, target.SpreadsheetID, target.SheetName, cells[0])
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", common.ErrRemoteStore, cells[0], err)
		}
		return map[model.CellRef]decimal.Decimal{cells[0]: value}, nil
	}

	values, err := e.store.BatchGetCells(ctx, target.SpreadsheetID, target.SheetName, cells)
	if err != nil {
		return nil, fmt.Errorf("%w: batch read of %d cells: %w", common.ErrRemoteStore, len(cells), err)
	}
	return values, nil
}

func (e *SyncEngine) writeCells(ctx context.Context, target Target, updates map[model.CellRef]decimal.Decimal) error {
	if len(updates) == 1 {
		for cell, value := range updates {
			if err := e.store.SetCell(ctx, target.SpreadsheetID, target.SheetName, cell, value); err != nil {
				return fmt.Errorf("%w: write %s: %w", common.ErrRemoteStore, cell, err)
			}
		}
		return nil
	}

	if err := e.store.BatchSetCells(ctx, target.SpreadsheetID, target.SheetName, updates); err != nil {
		return fmt.Errorf("%w: batch write of %d cells: %w", common.ErrRemoteStore, len(updates), err)
	}
	return nil
}

func sortedYears(years map[int]bool) []int {
	out := make([]int, 0, len(years))
	for y := range years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
