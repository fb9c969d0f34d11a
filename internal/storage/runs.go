package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/Veraticus/budgetflow/internal/common"
	"github.com/Veraticus/budgetflow/internal/model"
)

const runColumns = `id, started_at, file_name, file_hash, spreadsheet_id, sheet_name,
	transactions, mapped, unmapped, total, dry_run`

// RecordRun stores a run and its cell changes in one transaction. A run
// without an ID gets a fresh UUID.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *model.SyncRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC(),
		run.FileName,
		run.FileHash,
		run.SpreadsheetID,
		run.SheetName,
		run.Transactions,
		run.Mapped,
		run.Unmapped,
		run.Total.String(),
		run.DryRun,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			err = fmt.Errorf("%w: run %s", common.ErrDuplicateEntry, run.ID)
			return err
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_cells
		(run_id, row_index, col_index, previous, added, new_value)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare cell insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, change := range run.Cells {
		_, err = stmt.ExecContext(ctx, run.ID, change.Cell.Row, change.Cell.Col,
			change.Previous.String(), change.Added.String(), change.New.String())
		if err != nil {
			return fmt.Errorf("failed to insert cell %s: %w", change.Cell, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// FindLiveRun returns the latest non-dry run of a file against a tab.
func (s *SQLiteStorage) FindLiveRun(ctx context.Context, fileHash, spreadsheetID, sheetName string) (*model.SyncRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(fileHash, "fileHash"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs
		WHERE file_hash = ? AND spreadsheet_id = ? AND sheet_name = ? AND dry_run = 0
		ORDER BY started_at DESC LIMIT 1`,
		fileHash, spreadsheetID, sheetName)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadCells(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first, without their cells.
// A limit of zero or less returns every run.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs
		ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its cell changes. id may be a unique prefix.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.SyncRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	prefix := strings.NewReplacer("%", "", "_", "").Replace(id) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs
		WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`, id, prefix, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []*model.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	case len(found) > 1 && found[0].ID != id:
		return nil, fmt.Errorf("%w: run id %q is ambiguous", common.ErrDuplicateEntry, id)
	}

	run := found[0]
	if err := s.loadCells(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.SyncRun, error) {
	var run model.SyncRun
	err := row.Scan(
		&run.ID,
		&run.StartedAt,
		&run.FileName,
		&run.FileHash,
		&run.SpreadsheetID,
		&run.SheetName,
		&run.Transactions,
		&run.Mapped,
		&run.Unmapped,
		&run.Total,
		&run.DryRun,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	return &run, nil
}

func (s *SQLiteStorage) loadCells(ctx context.Context, run *model.SyncRun) error {
	rows, err := s.db.QueryContext(ctx, `SELECT row_index, col_index, previous, added, new_value
		FROM run_cells WHERE run_id = ? ORDER BY row_index, col_index`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to query cells: %w", err)
	}
	defer func() { _ = rows.Close() }()

	run.Cells = nil
	for rows.Next() {
		var change model.CellChange
		if err := rows.Scan(&change.Cell.Row, &change.Cell.Col, &change.Previous, &change.Added, &change.New); err != nil {
			return fmt.Errorf("failed to scan cell: %w", err)
		}
		run.Cells = append(run.Cells, change)
	}
	return rows.Err()
}
