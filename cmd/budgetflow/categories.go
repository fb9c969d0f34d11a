package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budgetflow/internal/cli"
	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/pattern"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories [export-file]",
		Short: "List budget categories and how a bank export maps onto them",
		Long: `List the categories of the budget tab. With an export file, also count
how many transactions land in each category and flag the unused ones.

Without a configured spreadsheet the built-in categories are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCategories,
	}

	cmd.Flags().String("spreadsheet", "", "Spreadsheet ID (overrides config)")
	cmd.Flags().String("sheet", "", "Sheet tab name (overrides config)")
	cmd.Flags().String("rules", "", "Mapping rules file (overrides config)")

	return cmd
}

func runCategories(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	spreadsheetID, _ := cmd.Flags().GetString("spreadsheet")
	sheetName, _ := cmd.Flags().GetString("sheet")
	rulesPath, _ := cmd.Flags().GetString("rules")

	sc := sheetsTarget(spreadsheetID, sheetName)
	var structure *model.SheetStructure
	if sc.Validate() != nil {
		logger.Debug("Google Sheets not configured, showing built-in categories")
		structure = sc.Layout.DefaultStructure()
	} else {
		client, err := newSheetsClient(ctx, sc, logger)
		if err != nil {
			return err
		}
		structure, err = client.LoadStructure(ctx, sc.SpreadsheetID, sc.SheetName)
		if err != nil {
			return fmt.Errorf("failed to load sheet structure: %w", err)
		}
	}

	var txns []model.Transaction
	if len(args) == 1 {
		input, err := readInput(ctx, args[0], logger)
		if err != nil {
			return err
		}
		txns = input.Transactions
	}

	classifier := pattern.NewClassifier(loadRules(ctx, rulesPath, logger))
	return writeCategories(cmd.OutOrStdout(), classifier, structure, txns)
}

// categoryUsage counts how many transactions each category receives and
// returns the unmapped transactions.
func categoryUsage(classifier *pattern.Classifier, structure *model.SheetStructure, txns []model.Transaction) ([]cli.CategoryUsage, []model.Transaction) {
	counts := make(map[int]int, len(structure.Categories))
	var unmapped []model.Transaction
	for _, txn := range txns {
		category, ok := classifier.Classify(txn, structure)
		if !ok {
			unmapped = append(unmapped, txn)
			continue
		}
		counts[category.RowIndex]++
	}

	usage := make([]cli.CategoryUsage, len(structure.Categories))
	for i, c := range structure.Categories {
		usage[i] = cli.CategoryUsage{Category: c, Count: counts[c.RowIndex]}
	}
	return usage, unmapped
}

func writeCategories(w io.Writer, classifier *pattern.Classifier, structure *model.SheetStructure, txns []model.Transaction) error {
	usage, unmapped := categoryUsage(classifier, structure, txns)

	out := cli.FormatTitle(fmt.Sprintf("%d categories", len(structure.Categories))) + "\n" +
		cli.RenderCategories(usage)

	if len(txns) > 0 {
		unused := classifier.UnmappedCategories(txns, structure)
		out += "\n\n" + fmt.Sprintf("%d transactions, %d categories without activity", len(txns), len(unused))
		if len(unmapped) > 0 {
			out += "\n\n" + cli.FormatWarning(fmt.Sprintf("%d unmapped transactions", len(unmapped))) +
				"\n" + cli.RenderUnmapped(unmapped)
		}
	}

	if _, err := fmt.Fprintln(w, out); err != nil {
		return fmt.Errorf("failed to write categories: %w", err)
	}
	return nil
}
