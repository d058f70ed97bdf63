package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// TransactionResponse represents a statement transaction in API responses.
type TransactionResponse struct {
	ID           int64   `json:"id"`
	Date         string  `json:"date"`
	Amount       float64 `json:"amount"`
	Reference    string  `json:"reference"`
	Description  string  `json:"description,omitempty"`
	LedgerTxnID  string  `json:"ledger_txn_id,omitempty"`
	ReconciledAt string  `json:"reconciled_at,omitempty"`
	Reconciled   bool    `json:"reconciled"`
}

// TransactionListResponse is returned when listing statement transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
}

// ImportResponse reports the outcome of a statement import.
type ImportResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// LedgerTransactionResponse represents a ledger transaction in API responses.
type LedgerTransactionResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Amount    int64  `json:"amount"`
	PayeeName string `json:"payee_name,omitempty"`
	Memo      string `json:"memo,omitempty"`
	FlagColor string `json:"flag_color,omitempty"`
}

// MatchResponse pairs one statement transaction with one ledger transaction.
type MatchResponse struct {
	Statement    TransactionResponse       `json:"statement"`
	Ledger       LedgerTransactionResponse `json:"ledger"`
	DateDiffDays int                       `json:"date_diff_days"`
}

// ActionsResponse reports which follow-up operations apply to a run.
type ActionsResponse struct {
	CanPersist bool `json:"can_persist"`
	CanFlag    bool `json:"can_flag"`
	CanCreate  bool `json:"can_create"`
}

// ReconcileResponse is returned by the reconcile endpoint.
type ReconcileResponse struct {
	Matched            []MatchResponse             `json:"matched"`
	MissingInLedger    []TransactionResponse       `json:"missing_in_ledger"`
	UnexpectedInLedger []LedgerTransactionResponse `json:"unexpected_in_ledger"`
	MatchedCount       int                         `json:"matched_count"`
	MissingCount       int                         `json:"missing_count"`
	UnexpectedCount    int                         `json:"unexpected_count"`
	Actions            ActionsResponse             `json:"actions"`
	PersistedCount     int                         `json:"persisted_count"`
	PersistErrors      map[int64]string            `json:"persist_errors,omitempty"`
	RunLogID           int64                       `json:"run_log_id,omitempty"`
	Error              string                      `json:"error,omitempty"`
}

// FlagResponse reports a per-id flag operation.
type FlagResponse struct {
	Updated int               `json:"updated"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// CreateMissingResponse reports a per-id creation pass.
type CreateMissingResponse struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  map[int64]string `json:"errors,omitempty"`
}

// UnmatchResponse is returned when clearing a reconciliation marker.
type UnmatchResponse struct {
	Cleared bool `json:"cleared"`
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID              int64  `json:"id"`
	RunUID          string `json:"run_uid"`
	BudgetID        string `json:"budget_id"`
	AccountID       string `json:"account_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	MatchedCount    int    `json:"matched_count"`
	MissingCount    int    `json:"missing_count"`
	UnexpectedCount int    `json:"unexpected_count"`
	Persisted       bool   `json:"persisted"`
	ConfigJSON      string `json:"config,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// RunListResponse is returned when listing reconciliation runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// MessageResponse is a generic message wrapper.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
