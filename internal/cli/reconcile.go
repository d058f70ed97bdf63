package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/reconview/ynab-reconciler/internal/adapters/statements"
	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/application/reconcile"
	"github.com/reconview/ynab-reconciler/internal/domain/matcher"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/config"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
	"github.com/reconview/ynab-reconciler/internal/observability"
)

// RunReconcile executes one reconciliation from the command line.
func RunReconcile(cfg *config.Config, flags *ReconcileFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := observability.NewLoggerWithSystem(loggingCfg, "reconcile")

	budgetID := flags.BudgetID
	if budgetID == "" {
		budgetID = cfg.YNAB.BudgetID
	}
	accountID := flags.AccountID
	if accountID == "" {
		accountID = cfg.YNAB.AccountID
	}
	if budgetID == "" || accountID == "" {
		return fmt.Errorf("budget and account are required (flags or config)")
	}
	if flags.StartDate == "" || flags.EndDate == "" {
		return fmt.Errorf("-start and -end are required")
	}

	start, err := time.Parse(storage.DateFormat, flags.StartDate)
	if err != nil {
		return fmt.Errorf("invalid -start date: %w", err)
	}
	end, err := time.Parse(storage.DateFormat, flags.EndDate)
	if err != nil {
		return fmt.Errorf("invalid -end date: %w", err)
	}

	matchCfg := matcher.Config{
		DateToleranceDays: cfg.Reconcile.DateToleranceDays,
		AmountTolerance:   cfg.Reconcile.AmountTolerance,
	}
	if flags.DateToleranceDays >= 0 {
		matchCfg.DateToleranceDays = flags.DateToleranceDays
	}
	if flags.AmountTolerance >= 0 {
		matchCfg.AmountTolerance = flags.AmountTolerance
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if flags.ImportCSV != "" {
		if err := importStatement(store, flags.ImportCSV); err != nil {
			return err
		}
	}

	ledger := ynab.NewClient(ynab.Config{
		BaseURL: cfg.YNAB.BaseURL,
		Token:   cfg.GetAPIToken("YNAB_TOKEN"),
	})
	orchestrator := reconcile.NewOrchestrator(store, ledger, logger, nil)

	PrintHeader(budgetID, accountID, flags.Persist)

	result := orchestrator.ReconcileAndPersist(context.Background(), reconcile.Params{
		BudgetID:  budgetID,
		AccountID: accountID,
		StartDate: start,
		EndDate:   end,
		Config:    matchCfg,
		Persist:   flags.Persist,
	})

	PrintReport(result)
	if flags.Persist {
		PrintRunSummary(result)
	}

	if !result.OK() {
		return fmt.Errorf("reconciliation failed: %s", result.Error)
	}
	return nil
}

// importStatement loads a CSV statement export into the local store.
func importStatement(store storage.Repository, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open statement file: %w", err)
	}
	defer func() { _ = f.Close() }()

	txns, err := statements.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	inserted, skipped, err := store.InsertTransactions(txns)
	if err != nil {
		return fmt.Errorf("failed to import statement: %w", err)
	}

	fmt.Printf("Imported %s: %d inserted, %d skipped\n\n", path, inserted, skipped)
	return nil
}
