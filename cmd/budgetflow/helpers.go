package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/budgetflow/internal/bankcsv"
	"github.com/Veraticus/budgetflow/internal/common"
	"github.com/Veraticus/budgetflow/internal/config"
	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/ofx"
	"github.com/Veraticus/budgetflow/internal/pattern"
	"github.com/Veraticus/budgetflow/internal/service"
	"github.com/Veraticus/budgetflow/internal/sheets"
	"github.com/Veraticus/budgetflow/internal/storage"
)

// inputFile is a bank export read into memory.
type inputFile struct {
	Name         string
	Hash         string
	Transactions []model.Transaction
}

// readerFor picks the parser by file extension: .ofx and .qfx go to the OFX
// reader, everything else is treated as a bank CSV export.
func readerFor(path string, logger *slog.Logger) service.TransactionReader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return ofx.NewParser(logger)
	default:
		return bankcsv.NewParser(logger)
	}
}

// readInput parses a bank export and fingerprints its bytes.
func readInput(ctx context.Context, path string, logger *slog.Logger) (*inputFile, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	txns, err := readerFor(path, logger).Parse(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	return &inputFile{
		Name:         filepath.Base(path),
		Hash:         hex.EncodeToString(sum[:]),
		Transactions: txns,
	}, nil
}

// loadRules reads the mapping-rule document, falling back to built-in rules.
func loadRules(ctx context.Context, override string, logger *slog.Logger) *model.RuleSet {
	path := config.RulesPath(viper.GetViper())
	if override != "" {
		path = config.ExpandPath(override)
	}
	return pattern.NewFileRuleSource(path, logger).LoadRules(ctx)
}

// sheetsTarget resolves the Sheets settings with command-line overrides.
func sheetsTarget(spreadsheetID, sheetName string) sheets.Config {
	sc := config.SheetsConfig(viper.GetViper())
	if spreadsheetID != "" {
		sc.SpreadsheetID = spreadsheetID
	}
	if sheetName != "" {
		sc.SheetName = sheetName
	}
	return sc
}

// newSheetsClient validates the Sheets settings and connects.
func newSheetsClient(ctx context.Context, sc sheets.Config, logger *slog.Logger) (*sheets.Client, error) {
	if err := sc.Validate(); err != nil {
		return nil, &common.UserError{
			Err:         err,
			UserMessage: "Google Sheets is not configured (set sheets.* in config or GOOGLE_SHEETS_* env vars)",
		}
	}
	return sheets.NewClient(ctx, sc, logger)
}

// initStorage opens the run ledger with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.Open(ctx, config.DatabasePath(viper.GetViper()))
	if err != nil {
		return nil, fmt.Errorf("failed to open run ledger: %w", err)
	}
	return store, nil
}
