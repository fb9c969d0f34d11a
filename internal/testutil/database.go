package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/storage"
)

// SetupTestLedger creates a migrated ledger in a temp dir and records the
// given runs. The database is closed when the test ends.
//
// Example:
//
//	ledger := testutil.SetupTestLedger(t, &model.SyncRun{...})
func SetupTestLedger(t *testing.T, runs ...*model.SyncRun) *storage.SQLiteStorage {
	t.Helper()

	ctx := context.Background()
	ledger, err := storage.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to create test ledger: %v", err)
	}
	t.Cleanup(func() {
		_ = ledger.Close()
	})

	for _, run := range runs {
		if err := ledger.RecordRun(ctx, run); err != nil {
			t.Fatalf("failed to seed run %q: %v", run.FileName, err)
		}
	}

	return ledger
}
