package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budgetflow/internal/cli"
	"github.com/Veraticus/budgetflow/internal/service"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past sync runs",
		Long: `List recent sync runs from the local ledger, newest first. With a run ID
(or a unique prefix of one) show the cells that run changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "l", 20, "Number of runs to list (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	ledger, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	return writeHistory(ctx, cmd.OutOrStdout(), ledger, id, limit)
}

func writeHistory(ctx context.Context, w io.Writer, ledger service.RunLedger, id string, limit int) error {
	var out string
	if id != "" {
		run, err := ledger.GetRun(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
		out = cli.RenderRun(run)
	} else {
		runs, err := ledger.ListRuns(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			out = cli.FormatWarning("No runs recorded yet")
		} else {
			out = cli.FormatTitle("Sync history") + "\n" + cli.RenderRuns(runs)
		}
	}

	if _, err := fmt.Fprintln(w, out); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
