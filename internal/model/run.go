package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CellChange records what one sync did to one cell.
type CellChange struct {
	Previous decimal.Decimal
	Added    decimal.Decimal
	New      decimal.Decimal
	Cell     CellRef
}

// SyncRun is one pass of a bank export through the pipeline.
type SyncRun struct {
	StartedAt     time.Time
	Total         decimal.Decimal
	ID            string
	FileName      string
	FileHash      string
	SpreadsheetID string
	SheetName     string
	Cells         []CellChange
	Transactions  int
	Mapped        int
	Unmapped      int
	DryRun        bool
}
