package storage

import "time"

// Repository defines the complete storage interface.
// This allows swapping implementations and makes testing with the in-memory
// mock straightforward.
type Repository interface {
	TransactionRepository
	RunLogRepository
	Close() error
}

// TransactionRepository handles statement transaction operations
type TransactionRepository interface {
	// InsertTransactions stores imported statement rows. Rows whose reference
	// already exists are skipped, not overwritten. Returns inserted and
	// skipped counts.
	InsertTransactions(txns []StatementTransaction) (inserted, skipped int, err error)

	// ListByDateRange returns transactions with start <= date <= end,
	// ordered by date then id.
	ListByDateRange(start, end time.Time) ([]StatementTransaction, error)

	// GetTransaction retrieves a transaction by id. Returns nil when absent.
	GetTransaction(id int64) (*StatementTransaction, error)

	// BatchMarkReconciled marks each pair's statement transaction as
	// reconciled against its ledger transaction. Each row is a single atomic
	// update; per-row failures are accumulated, never aborting the batch.
	BatchMarkReconciled(pairs []MatchPair) (*BatchResult, error)

	// Unmark clears the reconciliation marker. Returns false when the
	// transaction was not marked (or does not exist), never an error for that.
	Unmark(id int64) (bool, error)

	// ReconciledLedgerIDs returns every ledger transaction id currently
	// recorded as reconciled, keyed to the owning statement transaction id.
	ReconciledLedgerIDs() (map[string]int64, error)
}

// RunLogRepository handles the append-only reconciliation run log
type RunLogRepository interface {
	// AppendRunLog records one completed run and returns its id.
	AppendRunLog(run *ReconciliationRun) (int64, error)

	// ListRuns returns recent runs, newest first.
	ListRuns(limit int) ([]ReconciliationRun, error)

	// GetRun retrieves a run by id. Returns nil when absent.
	GetRun(id int64) (*ReconciliationRun, error)
}
