// Package reconcile drives one reconciliation run end to end: pull statement
// transactions from the local store, pull ledger transactions over an
// expanded window, invoke the matching engine, and optionally persist the
// outcome back through both sides.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/domain/currency"
	"github.com/reconview/ynab-reconciler/internal/domain/matcher"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
	"github.com/reconview/ynab-reconciler/internal/observability"
)

// Orchestrator coordinates the store, the ledger client and the matching
// engine. All collaborators are injected; there is no process-wide state.
type Orchestrator struct {
	store   storage.Repository
	ledger  LedgerClient
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewOrchestrator creates an orchestrator. metrics may be nil.
func NewOrchestrator(store storage.Repository, ledger LedgerClient, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:   store,
		ledger:  ledger,
		logger:  logger,
		metrics: metrics,
	}
}

// Reconcile runs matching for [StartDate, EndDate] without persisting
// anything. Failures come back as data on the result, never as a Go error.
func (o *Orchestrator) Reconcile(ctx context.Context, p Params) *Result {
	start := time.Now()
	result := o.reconcile(ctx, p)

	status := "ok"
	if !result.OK() {
		status = "error"
	}
	o.metrics.ObserveRun(status, result.MatchedCount, result.MissingCount, result.UnexpectedCount, time.Since(start))

	return result
}

func (o *Orchestrator) reconcile(ctx context.Context, p Params) *Result {
	if err := p.validate(); err != nil {
		return &Result{Error: "validation: " + err.Error()}
	}

	local, err := o.store.ListByDateRange(p.StartDate, p.EndDate)
	if err != nil {
		o.logger.Error("failed to load statement transactions", "error", err)
		return &Result{Error: "local store: " + err.Error()}
	}

	// Expanded window: a statement transaction dated just before StartDate
	// can still match a ledger transaction inside the window, and vice
	// versa, so the ledger fetch widens by the date tolerance on both ends.
	since := p.StartDate.AddDate(0, 0, -p.Config.DateToleranceDays)
	upper := p.EndDate.AddDate(0, 0, p.Config.DateToleranceDays)

	ledgerTxns, err := o.ledger.ListTransactions(ctx, p.BudgetID, p.AccountID, since)
	if err != nil {
		o.logger.Error("failed to load ledger transactions", "budget_id", p.BudgetID, "error", err)
		return &Result{Error: "ledger: " + err.Error()}
	}

	candidates := make([]ynab.Transaction, 0, len(ledgerTxns))
	for _, txn := range ledgerTxns {
		if txn.Deleted || txn.AccountID != p.AccountID {
			continue
		}
		if date, err := txn.ParseDate(); err == nil && date.After(upper) {
			continue
		}
		candidates = append(candidates, txn)
	}

	o.logger.Debug("reconciling",
		"budget_id", p.BudgetID,
		"account_id", p.AccountID,
		"start_date", p.StartDate.Format(storage.DateFormat),
		"end_date", p.EndDate.Format(storage.DateFormat),
		"statement_count", len(local),
		"ledger_count", len(candidates),
	)

	report := matcher.Match(local, candidates, p.Config)

	// Ledger transactions in the buffer zone were only match candidates;
	// narrow unexpected back to the requested window. Anything already
	// reconciled against a statement row in a prior run is not unexpected
	// either.
	reconciled, err := o.store.ReconciledLedgerIDs()
	if err != nil {
		o.logger.Error("failed to load reconciled ledger ids", "error", err)
		return &Result{Error: "local store: " + err.Error()}
	}

	narrowed := make([]ynab.Transaction, 0, len(report.UnexpectedInLedger))
	for _, txn := range report.UnexpectedInLedger {
		date, err := txn.ParseDate()
		if err != nil || date.Before(p.StartDate) || date.After(p.EndDate) {
			continue
		}
		if _, ok := reconciled[txn.ID]; ok {
			continue
		}
		narrowed = append(narrowed, txn)
	}
	report.UnexpectedInLedger = narrowed

	return &Result{
		Report:          report,
		MatchedCount:    len(report.Matched),
		MissingCount:    len(report.MissingInLedger),
		UnexpectedCount: len(report.UnexpectedInLedger),
		Actions: Actions{
			CanPersist: len(report.Matched) > 0,
			CanFlag:    len(report.UnexpectedInLedger) > 0,
			CanCreate:  len(report.MissingInLedger) > 0,
		},
	}
}

// ReconcileAndPersist runs Reconcile and, when p.Persist is set and at least
// one match exists, writes the matched pairs to the local store as a batch
// and appends a run log entry.
func (o *Orchestrator) ReconcileAndPersist(ctx context.Context, p Params) *Result {
	result := o.Reconcile(ctx, p)
	if !result.OK() || !p.Persist || result.MatchedCount == 0 {
		return result
	}

	pairs := make([]storage.MatchPair, 0, result.MatchedCount)
	for _, m := range result.Report.Matched {
		pairs = append(pairs, storage.MatchPair{
			StatementID: m.Statement.ID,
			LedgerTxnID: m.Ledger.ID,
		})
	}

	batch, err := o.store.BatchMarkReconciled(pairs)
	if err != nil {
		o.logger.Error("batch mark reconciled failed", "error", err)
		result.Error = "local store: " + err.Error()
		return result
	}
	result.PersistedCount = batch.UpdatedCount
	if len(batch.Errors) > 0 {
		result.PersistErrors = batch.Errors
		o.logger.Warn("some rows failed to persist", "failed", len(batch.Errors), "updated", batch.UpdatedCount)
	}

	configJSON, _ := json.Marshal(p.Config)
	runID, err := o.store.AppendRunLog(&storage.ReconciliationRun{
		BudgetID:        p.BudgetID,
		AccountID:       p.AccountID,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		MatchedCount:    result.MatchedCount,
		MissingCount:    result.MissingCount,
		UnexpectedCount: result.UnexpectedCount,
		Persisted:       true,
		ConfigJSON:      string(configJSON),
	})
	if err != nil {
		// The matches are already persisted; a failed audit append is
		// reported but does not undo them.
		o.logger.Error("failed to append run log", "error", err)
	} else {
		result.RunLogID = runID
	}

	o.logger.Info("reconciliation persisted",
		"budget_id", p.BudgetID,
		"account_id", p.AccountID,
		"matched", result.MatchedCount,
		"persisted", result.PersistedCount,
		"run_log_id", result.RunLogID,
	)

	return result
}

// FlagUnexpected sets the flag color on each given ledger transaction. Each
// failure is recorded per id; the remaining ids are still attempted.
func (o *Orchestrator) FlagUnexpected(ctx context.Context, budgetID string, ledgerIDs []string, color string) FlagResult {
	result := FlagResult{Errors: make(map[string]string)}

	for _, id := range ledgerIDs {
		if _, err := o.ledger.SetFlag(ctx, budgetID, id, color); err != nil {
			o.logger.Warn("failed to flag ledger transaction", "transaction_id", id, "error", err)
			result.Errors[id] = err.Error()
			continue
		}
		result.Updated++
	}

	return result
}

// CreateMissing submits each statement transaction to the ledger with its
// idempotency key. A duplicate import id means an earlier submission already
// created it and counts as skipped. The full list is always walked.
func (o *Orchestrator) CreateMissing(ctx context.Context, budgetID, accountID string, statementIDs []int64) CreateResult {
	result := CreateResult{Errors: make(map[int64]string)}

	for _, id := range statementIDs {
		txn, err := o.store.GetTransaction(id)
		if err != nil {
			result.Errors[id] = err.Error()
			continue
		}
		if txn == nil {
			result.Errors[id] = "statement transaction not found"
			continue
		}

		date := txn.Date.Format(storage.DateFormat)
		payload := ynab.NewTransaction{
			AccountID: accountID,
			Date:      date,
			Amount:    -currency.ToMilliunits(txn.Amount),
			PayeeName: txn.Description,
			Memo:      "Imported from card statement " + txn.Reference,
			Cleared:   "cleared",
			ImportID:  currency.ImportID(txn.Amount, date, txn.Reference),
		}

		_, err = o.ledger.CreateTransaction(ctx, budgetID, payload)
		switch {
		case errors.Is(err, ynab.ErrDuplicateImport):
			result.Skipped++
		case err != nil:
			o.logger.Warn("failed to create ledger transaction", "statement_id", id, "error", err)
			result.Errors[id] = err.Error()
		default:
			result.Created++
		}
	}

	return result
}

// Unmatch clears the reconciliation marker on one statement transaction so a
// future run can match it again. Unmatching an unmatched transaction returns
// false, not an error.
func (o *Orchestrator) Unmatch(ctx context.Context, statementID int64) (bool, error) {
	return o.store.Unmark(statementID)
}
