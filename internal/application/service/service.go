// Package service exposes the reconciliation use cases to transport layers.
// It guards each budget/account pair with a non-blocking lock so two runs
// never race on the same ledger account.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/reconview/ynab-reconciler/internal/application/reconcile"
)

// ErrRunInProgress is returned when a reconciliation for the same budget and
// account is already running.
var ErrRunInProgress = errors.New("reconciliation already in progress for this account")

// ReconcileService serializes runs per budget/account pair and delegates the
// actual work to the orchestrator.
type ReconcileService struct {
	orchestrator *reconcile.Orchestrator
	logger       *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReconcileService creates the service.
func NewReconcileService(orchestrator *reconcile.Orchestrator, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		orchestrator: orchestrator,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one budget/account pair, creating it on
// first use.
func (s *ReconcileService) lockFor(budgetID, accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := budgetID + "/" + accountID
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// Run executes one reconciliation. A second concurrent call for the same
// budget/account pair fails fast with ErrRunInProgress instead of queueing.
func (s *ReconcileService) Run(ctx context.Context, p reconcile.Params) (*reconcile.Result, error) {
	lock := s.lockFor(p.BudgetID, p.AccountID)
	if !lock.TryLock() {
		s.logger.Warn("reconciliation already running",
			"budget_id", p.BudgetID,
			"account_id", p.AccountID,
		)
		return nil, ErrRunInProgress
	}
	defer lock.Unlock()

	return s.orchestrator.ReconcileAndPersist(ctx, p), nil
}

// FlagUnexpected marks the given ledger transactions with a flag color.
func (s *ReconcileService) FlagUnexpected(ctx context.Context, budgetID string, ledgerIDs []string, color string) reconcile.FlagResult {
	return s.orchestrator.FlagUnexpected(ctx, budgetID, ledgerIDs, color)
}

// CreateMissing pushes statement transactions into the ledger.
func (s *ReconcileService) CreateMissing(ctx context.Context, budgetID, accountID string, statementIDs []int64) reconcile.CreateResult {
	return s.orchestrator.CreateMissing(ctx, budgetID, accountID, statementIDs)
}

// Unmatch clears a statement transaction's reconciliation marker.
func (s *ReconcileService) Unmatch(ctx context.Context, statementID int64) (bool, error) {
	return s.orchestrator.Unmatch(ctx, statementID)
}
