package sheets

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/budgetflow/internal/classification"
	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/service"
)

// MockStore is an in-memory GridStore for testing. It records how often each
// method was called so tests can assert that batched calls are used.
type MockStore struct {
	Structure *model.SheetStructure
	Rows      [][]string
	cells     map[model.CellRef]decimal.Decimal
	calls     map[string]int

	// Errors returned by the matching method when set.
	LoadErr     error
	GetErr      error
	BatchGetErr error
	SetErr      error
	BatchSetErr error
	DownloadErr error

	LastBatchGet []model.CellRef
	LastBatchSet map[model.CellRef]decimal.Decimal

	mu sync.Mutex
}

var _ service.GridStore = (*MockStore)(nil)

// Method names used as call-count keys.
const (
	CallLoadStructure   = "LoadStructure"
	CallGetCell         = "GetCell"
	CallBatchGetCells   = "BatchGetCells"
	CallSetCell         = "SetCell"
	CallBatchSetCells   = "BatchSetCells"
	CallDownloadAllRows = "DownloadAllRows"
)

// NewMockStore creates an empty mock store using the built-in structure.
func NewMockStore() *MockStore {
	return &MockStore{
		Structure: classification.DefaultStructure(),
		cells:     make(map[model.CellRef]decimal.Decimal),
		calls:     make(map[string]int),
	}
}

func (m *MockStore) record(name string) {
	m.calls[name]++
}

// LoadStructure implements service.StructureLoader.
func (m *MockStore) LoadStructure(_ context.Context, _, _ string) (*model.SheetStructure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(CallLoadStructure)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Structure, nil
}

// GetCell implements service.CellReader.
func (m *MockStore) GetCell(_ context.Context, _, _ string, cell model.CellRef) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(CallGetCell)
	if m.GetErr != nil {
		return decimal.Zero, m.GetErr
	}
	return m.cells[cell], nil
}

// BatchGetCells implements service.CellReader.
func (m *MockStore) BatchGetCells(_ context.Context, _, _ string, cells []model.CellRef) (map[model.CellRef]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(CallBatchGetCells)
	m.LastBatchGet = append([]model.CellRef(nil), cells...)
	if m.BatchGetErr != nil {
		return nil, m.BatchGetErr
	}

	out := make(map[model.CellRef]decimal.Decimal, len(cells))
	for _, c := range cells {
		out[c] = m.cells[c]
	}
	return out, nil
}

// SetCell implements service.CellWriter.
func (m *MockStore) SetCell(_ context.Context, _, _ string, cell model.CellRef, value decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(CallSetCell)
	if m.SetErr != nil {
		return m.SetErr
	}
	m.cells[cell] = value
	return nil
}

// BatchSetCells implements service.CellWriter.
func (m *MockStore) BatchSetCells(_ context.Context, _, _ string, updates map[model.CellRef]decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(CallBatchSetCells)
	m.LastBatchSet = make(map[model.CellRef]decimal.Decimal, len(updates))
	for c, v := range updates {
		m.LastBatchSet[c] = v
	}
	if m.BatchSetErr != nil {
		return m.BatchSetErr
	}
	for c, v := range updates {
		m.cells[c] = v
	}
	return nil
}

// DownloadAllRows implements service.RowDownloader.
func (m *MockStore) DownloadAllRows(_ context.Context, _, _ string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(CallDownloadAllRows)
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	out := make([][]string, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

// Cell returns the stored value of a cell without counting a call.
func (m *MockStore) Cell(cell model.CellRef) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cells[cell]
}

// SetInitial seeds a cell without counting a call.
func (m *MockStore) SetInitial(cell model.CellRef, value decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[cell] = value
}

// Calls returns how often the named method was called.
func (m *MockStore) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// TotalCalls returns the number of calls across all methods.
func (m *MockStore) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// Reset clears recorded calls but keeps cell values.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = make(map[string]int)
	m.LastBatchGet = nil
	m.LastBatchSet = nil
}
