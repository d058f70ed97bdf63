package storage

import "time"

// DateFormat is the calendar-date layout used throughout the store.
const DateFormat = "2006-01-02"

// StatementTransaction is one row of an imported card statement.
// Sign convention: positive = money leaving the account (charge),
// negative = credit/refund. The reference is issuer-assigned and unique
// across all imports; the id is stable once assigned.
type StatementTransaction struct {
	ID           int64      `json:"id"`
	Date         time.Time  `json:"date"`
	Amount       float64    `json:"amount"`
	Reference    string     `json:"reference"`
	Description  string     `json:"description,omitempty"`
	LedgerTxnID  string     `json:"ledger_txn_id,omitempty"`
	ReconciledAt *time.Time `json:"reconciled_at,omitempty"`
}

// Reconciled reports whether the transaction is currently matched to a
// ledger transaction.
func (t *StatementTransaction) Reconciled() bool {
	return t.LedgerTxnID != ""
}

// ReconciliationRun is the append-only audit record of one completed run.
type ReconciliationRun struct {
	ID              int64     `json:"id"`
	RunUID          string    `json:"run_uid"`
	BudgetID        string    `json:"budget_id"`
	AccountID       string    `json:"account_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	MatchedCount    int       `json:"matched_count"`
	MissingCount    int       `json:"missing_count"`
	UnexpectedCount int       `json:"unexpected_count"`
	Persisted       bool      `json:"persisted"`
	ConfigJSON      string    `json:"config_json,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// MatchPair links a statement transaction to the ledger transaction it was
// reconciled against.
type MatchPair struct {
	StatementID int64  `json:"statement_id"`
	LedgerTxnID string `json:"ledger_txn_id"`
}

// BatchResult reports the outcome of a batch update. Per-item failures are
// recorded by statement id; the batch never aborts on a single row.
type BatchResult struct {
	UpdatedCount int              `json:"updated_count"`
	Errors       map[int64]string `json:"errors,omitempty"`
}
