package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budgetflow/internal/cli"
	"github.com/Veraticus/budgetflow/internal/common"
	"github.com/Veraticus/budgetflow/internal/engine"
	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/pattern"
	"github.com/Veraticus/budgetflow/internal/service"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <export-file>",
		Short: "Add a bank export's monthly totals to the budget sheet",
		Long: `Parse a bank export (semicolon CSV or OFX/QFX), classify every transaction
and add each category's monthly total onto its cell in the budget tab.

Current values are read in one batch and new values written in one batch.
A file that was already synced to the same tab is refused unless --force
is given, since running it twice would double the totals.

Examples:
  # Preview without touching the sheet
  budgetflow sync --dry-run ~/Downloads/export.csv

  # Sync into a specific tab
  budgetflow sync --sheet 2024 ~/Downloads/export.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runSync,
	}

	cmd.Flags().BoolP("dry-run", "n", false, "Classify and aggregate without writing to the sheet")
	cmd.Flags().Bool("force", false, "Sync even if this file was already synced to the tab")
	cmd.Flags().String("spreadsheet", "", "Spreadsheet ID (overrides config)")
	cmd.Flags().String("sheet", "", "Sheet tab name (overrides config)")
	cmd.Flags().String("rules", "", "Mapping rules file (overrides config)")

	return cmd
}

// syncRequest is one sync invocation with its collaborators resolved.
type syncRequest struct {
	Store     service.GridStore
	Ledger    service.RunLedger
	Structure *model.SheetStructure
	Rules     *model.RuleSet
	Input     *inputFile
	Out       io.Writer
	Logger    *slog.Logger
	Target    engine.Target
	DryRun    bool
	Force     bool
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")
	spreadsheetID, _ := cmd.Flags().GetString("spreadsheet")
	sheetName, _ := cmd.Flags().GetString("sheet")
	rulesPath, _ := cmd.Flags().GetString("rules")

	input, err := readInput(ctx, args[0], logger)
	if err != nil {
		return err
	}

	sc := sheetsTarget(spreadsheetID, sheetName)
	req := syncRequest{
		Rules:  loadRules(ctx, rulesPath, logger),
		Input:  input,
		Out:    cmd.OutOrStdout(),
		Logger: logger,
		Target: engine.Target{SpreadsheetID: sc.SpreadsheetID, SheetName: sc.SheetName},
		DryRun: dryRun,
		Force:  force,
	}

	// A dry run works offline against the built-in structure when the sheet
	// is not configured.
	if dryRun && sc.Validate() != nil {
		logger.Warn("Google Sheets not configured, dry run uses the built-in categories")
		req.Structure = sc.Layout.DefaultStructure()
	} else {
		client, err := newSheetsClient(ctx, sc, logger)
		if err != nil {
			return err
		}
		req.Store = client
	}

	ledger, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ledger.Close(); closeErr != nil {
			logger.Warn("Failed to close run ledger", "error", closeErr)
		}
	}()
	req.Ledger = ledger

	_, err = executeSync(ctx, req)
	return err
}

// executeSync runs the pipeline for an already parsed input and records
// the run in the ledger.
func executeSync(ctx context.Context, req syncRequest) (*model.SyncRun, error) {
	if len(req.Input.Transactions) == 0 {
		return nil, &common.UserError{
			Err:         common.ErrNoTransactions,
			UserMessage: fmt.Sprintf("No transactions found in %s", req.Input.Name),
		}
	}

	if !req.DryRun && !req.Force {
		previous, err := req.Ledger.FindLiveRun(ctx, req.Input.Hash, req.Target.SpreadsheetID, req.Target.SheetName)
		switch {
		case err == nil:
			return nil, &common.UserError{
				Err: fmt.Errorf("%w: run %s on %s", common.ErrAlreadySynced,
					cli.ShortID(previous.ID), previous.StartedAt.Format(time.DateTime)),
				UserMessage: fmt.Sprintf("%s was already synced to %q (run %s). Use --force to add it again.",
					req.Input.Name, req.Target.SheetName, cli.ShortID(previous.ID)),
			}
		case !errors.Is(err, common.ErrNotFound):
			return nil, fmt.Errorf("failed to check run history: %w", err)
		}
	}

	structure := req.Structure
	if structure == nil {
		var err error
		structure, err = req.Store.LoadStructure(ctx, req.Target.SpreadsheetID, req.Target.SheetName)
		if err != nil {
			return nil, fmt.Errorf("%w: load structure: %w", common.ErrRemoteStore, err)
		}
	}

	var store engine.CellStore
	if req.Store != nil {
		store = req.Store
	}
	eng := engine.New(store, pattern.NewClassifier(req.Rules), req.Logger)

	started := time.Now()
	report, err := eng.Sync(ctx, req.Target, req.Input.Transactions, structure, engine.Options{DryRun: req.DryRun})
	if err != nil {
		return nil, err
	}

	if _, err := fmt.Fprintln(req.Out, cli.RenderReport(report)); err != nil {
		req.Logger.Warn("Failed to write report", "error", err)
	}

	run := &model.SyncRun{
		StartedAt:     started,
		Total:         report.Total,
		FileName:      req.Input.Name,
		FileHash:      req.Input.Hash,
		SpreadsheetID: req.Target.SpreadsheetID,
		SheetName:     req.Target.SheetName,
		Transactions:  report.Transactions,
		Mapped:        report.Mapped(),
		Unmapped:      len(report.Unmapped),
		DryRun:        req.DryRun,
	}
	if report.Written {
		run.Cells = report.Changes()
	}

	if err := req.Ledger.RecordRun(ctx, run); err != nil {
		// The sheet is already written at this point
		req.Logger.Error("Failed to record run", "error", err)
		return run, nil
	}
	req.Logger.Debug("Recorded run", "id", run.ID)

	return run, nil
}
