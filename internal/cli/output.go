package cli

import (
	"fmt"
	"strings"

	"github.com/reconview/ynab-reconciler/internal/application/reconcile"
	"github.com/reconview/ynab-reconciler/internal/domain/currency"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// PrintHeader prints the run header.
func PrintHeader(budgetID, accountID string, persist bool) {
	mode := "DRY-RUN"
	if persist {
		mode = "PERSIST"
	}
	fmt.Printf("ynab-reconciler: budget=%s account=%s (%s mode)\n\n", budgetID, accountID, mode)
}

// PrintReport prints the three-way reconciliation report.
func PrintReport(result *reconcile.Result) {
	if !result.OK() {
		fmt.Printf("Run failed: %s\n", result.Error)
		return
	}

	fmt.Printf("Matched: %d | Missing in ledger: %d | Unexpected in ledger: %d\n",
		result.MatchedCount, result.MissingCount, result.UnexpectedCount)

	report := result.Report
	if report == nil {
		return
	}

	if len(report.Matched) > 0 {
		fmt.Println("\nMatched:")
		for _, m := range report.Matched {
			fmt.Printf("  %s  %8.2f  %-24s -> %s (%+d days)\n",
				m.Statement.Date.Format(storage.DateFormat),
				m.Statement.Amount,
				truncate(m.Statement.Reference, 24),
				m.Ledger.ID,
				m.DateDiffDays)
		}
	}

	if len(report.MissingInLedger) > 0 {
		fmt.Println("\nMissing in ledger:")
		for _, txn := range report.MissingInLedger {
			fmt.Printf("  %s  %8.2f  %s\n",
				txn.Date.Format(storage.DateFormat), txn.Amount, txn.Reference)
		}
	}

	if len(report.UnexpectedInLedger) > 0 {
		fmt.Println("\nUnexpected in ledger:")
		for _, txn := range report.UnexpectedInLedger {
			fmt.Printf("  %s  %8.2f  %s  %s\n",
				txn.Date, currency.FromMilliunits(txn.Amount), txn.ID, txn.PayeeName)
		}
	}
}

// PrintRunSummary prints the persistence outcome.
func PrintRunSummary(result *reconcile.Result) {
	fmt.Println(strings.Repeat("-", 60))
	if result.PersistedCount > 0 {
		fmt.Printf("Persisted %d matched pair(s), run log id %d\n", result.PersistedCount, result.RunLogID)
	}
	if len(result.PersistErrors) > 0 {
		fmt.Println("Persist errors:")
		for id, msg := range result.PersistErrors {
			fmt.Printf("  - statement %d: %s\n", id, msg)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
