package dto

// ReconcileRequest starts a reconciliation run.
type ReconcileRequest struct {
	BudgetID          string   `json:"budget_id"`
	AccountID         string   `json:"account_id"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	DateToleranceDays *int     `json:"date_tolerance_days,omitempty"`
	AmountTolerance   *float64 `json:"amount_tolerance,omitempty"`
	Persist           bool     `json:"persist"`
}

// FlagRequest marks unexpected ledger transactions with a flag color.
type FlagRequest struct {
	BudgetID       string   `json:"budget_id"`
	TransactionIDs []string `json:"transaction_ids"`
	Color          string   `json:"color,omitempty"`
}

// CreateMissingRequest pushes statement transactions into the ledger.
type CreateMissingRequest struct {
	BudgetID     string  `json:"budget_id"`
	AccountID    string  `json:"account_id"`
	StatementIDs []int64 `json:"statement_ids"`
}

// TransactionListParams represents query parameters for listing statement
// transactions.
type TransactionListParams struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
