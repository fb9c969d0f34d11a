package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/budgetflow/internal/backup"
	"github.com/Veraticus/budgetflow/internal/cli"
	"github.com/Veraticus/budgetflow/internal/service"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Download the budget tab to a local file",
		Long: `Download every row of the budget tab and write it as CSV, JSON or a
plain-text grid with A1 column letters.

Examples:
  budgetflow backup --format csv --output budget-2024.csv
  budgetflow backup --format text --output -`,
		Args: cobra.NoArgs,
		RunE: runBackup,
	}

	cmd.Flags().StringP("format", "f", "csv", "Output format (csv, json, text)")
	cmd.Flags().StringP("output", "o", "", "Output file, - for stdout (default: <sheet>-<date>.<format>)")
	cmd.Flags().String("spreadsheet", "", "Spreadsheet ID (overrides config)")
	cmd.Flags().String("sheet", "", "Sheet tab name (overrides config)")

	return cmd
}

func runBackup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	formatName, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	spreadsheetID, _ := cmd.Flags().GetString("spreadsheet")
	sheetName, _ := cmd.Flags().GetString("sheet")

	format, err := backup.ParseFormat(formatName)
	if err != nil {
		return err
	}

	sc := sheetsTarget(spreadsheetID, sheetName)
	client, err := newSheetsClient(ctx, sc, logger)
	if err != nil {
		return err
	}

	if output == "" {
		output = fmt.Sprintf("%s-%s.%s", sc.SheetName, time.Now().Format("2006-01-02"), format)
	}

	var w io.Writer = cmd.OutOrStdout()
	showProgress := output != "-"
	if showProgress {
		if err := os.MkdirAll(filepath.Dir(output), 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(output) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	rows, err := exportTab(ctx, client, w, sc.SpreadsheetID, sc.SheetName, format, showProgress)
	if err != nil {
		return err
	}

	if showProgress {
		slog.Info(cli.FormatSuccess(fmt.Sprintf("Backed up %d rows", rows)), "file", output)
	}
	return nil
}

// exportTab downloads a tab and writes it in the given format. With
// progress set, a bar tracks the rows written on stderr.
func exportTab(ctx context.Context, store service.RowDownloader, w io.Writer, spreadsheetID, sheetName string, format backup.Format, progress bool) (int, error) {
	rows, err := store.DownloadAllRows(ctx, spreadsheetID, sheetName)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", sheetName, err)
	}

	opts := backup.Options{Format: format}
	if progress {
		bar := progressbar.NewOptions(len(rows),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]Writing rows...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
		opts.OnRow = func() {
			if err := bar.Add(1); err != nil {
				slog.Debug("Failed to update progress bar", "error", err)
			}
		}
	}

	snap := backup.Snapshot{
		ExportedAt:    time.Now().UTC(),
		SpreadsheetID: spreadsheetID,
		SheetName:     sheetName,
		Rows:          rows,
	}
	if err := backup.Write(w, snap, opts); err != nil {
		return 0, err
	}
	return len(rows), nil
}
