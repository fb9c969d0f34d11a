package engine

import (
	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/service"
)

// Classifier defines the contract for transaction categorization.
type Classifier interface {
	Classify(txn model.Transaction, structure *model.SheetStructure) (model.BudgetCategory, bool)
}

// CellStore is the part of the remote grid the engine reads and writes.
type CellStore interface {
	service.CellReader
	service.CellWriter
}
