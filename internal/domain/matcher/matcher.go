// Package matcher is the reconciliation engine: a pure function from one set
// of statement transactions and one set of ledger transactions to a three-way
// discrepancy report, under configurable date and amount tolerance.
//
// The two systems record the same real-world expense with opposite signs
// (statement: positive = charge; ledger: negative = outflow, in milliunits),
// so amounts are compared by absolute value after converting the ledger side
// to major units. Comparing signed amounts would silently produce zero
// matches.
//
// The engine never fails and never suspends. Filtering deleted ledger
// transactions is the caller's job; the engine is set logic over whatever it
// is given.
package matcher

import (
	"math"
	"time"

	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/domain/currency"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// epsilon absorbs float representation error so that a difference exactly
// equal to the tolerance still matches.
const epsilon = 1e-9

// ledgerCandidate caches the parsed date and absolute major-unit amount of
// one ledger transaction. A transaction with an unparseable date never
// contributes to a match and falls through to unexpected.
type ledgerCandidate struct {
	date      time.Time
	dateOK    bool
	absAmount float64
}

// Match reconciles statements against ledger transactions and returns the
// partitioned report.
//
// Each statement transaction, in input order, takes the not-yet-consumed
// ledger transaction with the smallest |day difference| among those within
// both tolerances. Ties keep the first candidate in ledger input order.
// Consumption is one-to-one: no transaction on either side appears in more
// than one match.
func Match(statements []storage.StatementTransaction, ledger []ynab.Transaction, cfg Config) *Report {
	report := &Report{
		Matched:            make([]Pair, 0, len(statements)),
		MissingInLedger:    make([]storage.StatementTransaction, 0),
		UnexpectedInLedger: make([]ynab.Transaction, 0),
	}

	candidates := make([]ledgerCandidate, len(ledger))
	for i := range ledger {
		date, err := ledger[i].ParseDate()
		candidates[i] = ledgerCandidate{
			date:      date,
			dateOK:    err == nil,
			absAmount: math.Abs(currency.FromMilliunits(ledger[i].Amount)),
		}
	}

	consumed := make([]bool, len(ledger))

	for _, stmt := range statements {
		bestIdx := -1
		bestDiff := 0

		for i := range ledger {
			if consumed[i] || !candidates[i].dateOK {
				continue
			}

			diff := daysBetween(stmt.Date, candidates[i].date)
			if absInt(diff) > cfg.DateToleranceDays {
				continue
			}

			if math.Abs(math.Abs(stmt.Amount)-candidates[i].absAmount) > cfg.AmountTolerance+epsilon {
				continue
			}

			// Strict < keeps the earlier candidate on equal date distance.
			if bestIdx == -1 || absInt(diff) < absInt(bestDiff) {
				bestIdx = i
				bestDiff = diff
			}
		}

		if bestIdx == -1 {
			report.MissingInLedger = append(report.MissingInLedger, stmt)
			continue
		}

		consumed[bestIdx] = true
		report.Matched = append(report.Matched, Pair{
			Statement:    stmt,
			Ledger:       ledger[bestIdx],
			DateDiffDays: bestDiff,
		})
	}

	for i := range ledger {
		if !consumed[i] {
			report.UnexpectedInLedger = append(report.UnexpectedInLedger, ledger[i])
		}
	}

	return report
}

// daysBetween returns b minus a in whole calendar days. Both are normalized
// to UTC midnight so time zones and DST never shift the count.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
