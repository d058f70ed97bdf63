package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/domain/matcher"
)

// LedgerClient is the outbound ledger interface the orchestrator depends on.
// *ynab.Client satisfies it; tests inject fakes.
type LedgerClient interface {
	ListTransactions(ctx context.Context, budgetID, accountID string, since time.Time) ([]ynab.Transaction, error)
	CreateTransaction(ctx context.Context, budgetID string, txn ynab.NewTransaction) (*ynab.Transaction, error)
	SetFlag(ctx context.Context, budgetID, transactionID, color string) (*ynab.Transaction, error)
}

var _ LedgerClient = (*ynab.Client)(nil)

// Params describes one reconciliation run.
type Params struct {
	BudgetID  string
	AccountID string
	StartDate time.Time
	EndDate   time.Time
	Config    matcher.Config
	Persist   bool
}

// validate rejects bad parameters before any I/O happens.
func (p Params) validate() error {
	if p.BudgetID == "" {
		return fmt.Errorf("budget_id is required")
	}
	if p.AccountID == "" {
		return fmt.Errorf("account_id is required")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required")
	}
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("start_date must be on or before end_date")
	}
	if p.Config.DateToleranceDays < 0 {
		return fmt.Errorf("date_tolerance_days must be >= 0")
	}
	if p.Config.AmountTolerance < 0 {
		return fmt.Errorf("amount_tolerance must be >= 0")
	}
	return nil
}

// Actions reports which follow-up operations make sense for a run's report,
// regardless of whether persistence was requested.
type Actions struct {
	CanPersist bool `json:"can_persist"`
	CanFlag    bool `json:"can_flag"`
	CanCreate  bool `json:"can_create"`
}

// Result is the typed outcome of one run. Whole-run failures are carried in
// Error with zero counts; the orchestrator never panics or returns a Go error
// for the run path.
type Result struct {
	Report          *matcher.Report  `json:"report,omitempty"`
	MatchedCount    int              `json:"matched_count"`
	MissingCount    int              `json:"missing_count"`
	UnexpectedCount int              `json:"unexpected_count"`
	Actions         Actions          `json:"actions"`
	PersistedCount  int              `json:"persisted_count"`
	PersistErrors   map[int64]string `json:"persist_errors,omitempty"`
	RunLogID        int64            `json:"run_log_id,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// OK reports whether the run completed.
func (r *Result) OK() bool {
	return r.Error == ""
}

// FlagResult reports a per-id flag operation. Partial success is the normal
// case, not an exception.
type FlagResult struct {
	Updated int               `json:"updated"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// CreateResult reports a per-id creation pass. A duplicate import id counts
// as skipped, never as an error.
type CreateResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  map[int64]string `json:"errors,omitempty"`
}
