package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/budgetflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRun   = errors.New("invalid run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if s == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRun(run *model.SyncRun) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.FileHash == "" {
		return fmt.Errorf("%w: missing file hash", ErrInvalidRun)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	if run.Transactions < 0 || run.Mapped < 0 || run.Unmapped < 0 {
		return fmt.Errorf("%w: negative counts", ErrInvalidRun)
	}
	if run.Mapped+run.Unmapped > run.Transactions {
		return fmt.Errorf("%w: %d mapped and %d unmapped exceed %d transactions",
			ErrInvalidRun, run.Mapped, run.Unmapped, run.Transactions)
	}
	return nil
}
