package storage

import (
	"fmt"
	"sort"
	"time"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	txns    map[int64]*StatementTransaction
	runs    map[int64]*ReconciliationRun
	nextID  int64
	nextRun int64

	// Hooks for test assertions
	BatchMarkCalled    bool
	LastBatchPairs     []MatchPair
	AppendRunLogCalled bool
	LastRun            *ReconciliationRun

	// Error injection for testing error paths
	ListErr      error
	BatchMarkErr error
	AppendRunErr error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		txns:    make(map[int64]*StatementTransaction),
		runs:    make(map[int64]*ReconciliationRun),
		nextID:  1,
		nextRun: 1,
	}
}

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// AddTransaction inserts a transaction directly, assigning an id (test setup)
func (m *MockRepository) AddTransaction(txn StatementTransaction) *StatementTransaction {
	if txn.ID == 0 {
		txn.ID = m.nextID
		m.nextID++
	} else if txn.ID >= m.nextID {
		m.nextID = txn.ID + 1
	}
	copied := txn
	m.txns[copied.ID] = &copied
	return &copied
}

// InsertTransactions stores rows, skipping duplicate references
func (m *MockRepository) InsertTransactions(txns []StatementTransaction) (int, int, error) {
	existing := make(map[string]bool)
	for _, t := range m.txns {
		existing[t.Reference] = true
	}

	inserted := 0
	for _, txn := range txns {
		if existing[txn.Reference] {
			continue
		}
		existing[txn.Reference] = true
		m.AddTransaction(txn)
		inserted++
	}
	return inserted, len(txns) - inserted, nil
}

// ListByDateRange returns transactions inside the range, ordered by date then id
func (m *MockRepository) ListByDateRange(start, end time.Time) ([]StatementTransaction, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var result []StatementTransaction
	for _, txn := range m.txns {
		if txn.Date.Before(start) || txn.Date.After(end) {
			continue
		}
		result = append(result, *txn)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// GetTransaction retrieves a transaction by id
func (m *MockRepository) GetTransaction(id int64) (*StatementTransaction, error) {
	txn, ok := m.txns[id]
	if !ok {
		return nil, nil
	}
	copied := *txn
	return &copied, nil
}

// BatchMarkReconciled marks pairs as reconciled, recording per-row failures
func (m *MockRepository) BatchMarkReconciled(pairs []MatchPair) (*BatchResult, error) {
	m.BatchMarkCalled = true
	m.LastBatchPairs = pairs
	if m.BatchMarkErr != nil {
		return nil, m.BatchMarkErr
	}

	result := &BatchResult{Errors: make(map[int64]string)}
	now := time.Now()
	for _, pair := range pairs {
		txn, ok := m.txns[pair.StatementID]
		if !ok {
			result.Errors[pair.StatementID] = "statement transaction not found"
			continue
		}
		txn.LedgerTxnID = pair.LedgerTxnID
		ts := now
		txn.ReconciledAt = &ts
		result.UpdatedCount++
	}
	return result, nil
}

// Unmark clears the reconciliation marker
func (m *MockRepository) Unmark(id int64) (bool, error) {
	txn, ok := m.txns[id]
	if !ok || txn.LedgerTxnID == "" {
		return false, nil
	}
	txn.LedgerTxnID = ""
	txn.ReconciledAt = nil
	return true, nil
}

// ReconciledLedgerIDs returns reconciled ledger ids keyed to statement ids
func (m *MockRepository) ReconciledLedgerIDs() (map[string]int64, error) {
	ids := make(map[string]int64)
	for _, txn := range m.txns {
		if txn.LedgerTxnID != "" {
			ids[txn.LedgerTxnID] = txn.ID
		}
	}
	return ids, nil
}

// AppendRunLog records a run
func (m *MockRepository) AppendRunLog(run *ReconciliationRun) (int64, error) {
	m.AppendRunLogCalled = true
	if m.AppendRunErr != nil {
		return 0, m.AppendRunErr
	}

	copied := *run
	copied.ID = m.nextRun
	if copied.RunUID == "" {
		copied.RunUID = fmt.Sprintf("mock-run-%d", copied.ID)
	}
	copied.CreatedAt = time.Now()
	m.nextRun++
	m.runs[copied.ID] = &copied
	m.LastRun = &copied
	return copied.ID, nil
}

// ListRuns returns runs newest first
func (m *MockRepository) ListRuns(limit int) ([]ReconciliationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []ReconciliationRun
	for _, run := range m.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetRun retrieves a run by id
func (m *MockRepository) GetRun(id int64) (*ReconciliationRun, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}
