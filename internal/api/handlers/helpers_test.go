package handlers_test

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/application/reconcile"
	"github.com/reconview/ynab-reconciler/internal/application/service"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// setChiURLParam injects a chi route parameter into a request context.
func setChiURLParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

// fakeLedger is an in-memory ledger client for handler tests.
type fakeLedger struct {
	txns    []ynab.Transaction
	flagged []string
	created []ynab.NewTransaction
}

func (f *fakeLedger) ListTransactions(ctx context.Context, budgetID, accountID string, since time.Time) ([]ynab.Transaction, error) {
	return f.txns, nil
}

func (f *fakeLedger) CreateTransaction(ctx context.Context, budgetID string, txn ynab.NewTransaction) (*ynab.Transaction, error) {
	f.created = append(f.created, txn)
	return &ynab.Transaction{ID: "created", ImportID: txn.ImportID}, nil
}

func (f *fakeLedger) SetFlag(ctx context.Context, budgetID, transactionID, color string) (*ynab.Transaction, error) {
	f.flagged = append(f.flagged, transactionID)
	return &ynab.Transaction{ID: transactionID, FlagColor: color}, nil
}

// newTestService wires a reconcile service over a mock repository and fake
// ledger.
func newTestService(repo storage.Repository, ledger reconcile.LedgerClient) *service.ReconcileService {
	orch := reconcile.NewOrchestrator(repo, ledger, nil, nil)
	return service.NewReconcileService(orch, nil)
}

func mustDate(s string) time.Time {
	d, err := time.Parse(storage.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}
