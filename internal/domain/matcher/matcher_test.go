package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// Helpers to build test transactions

func stmt(id int64, date string, amount float64) storage.StatementTransaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return storage.StatementTransaction{ID: id, Date: d, Amount: amount, Reference: "ref"}
}

func ledger(id, date string, amount int64) ynab.Transaction {
	return ynab.Transaction{ID: id, Date: date, Amount: amount, AccountID: "account-1"}
}

func zeroTolerance() Config {
	return Config{DateToleranceDays: 0, AmountTolerance: 0}
}

func TestMatch_SignSymmetry(t *testing.T) {
	// statement 30.00 (charge) vs ledger -30000 (outflow milliunits)
	report := Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-01", 30.00)},
		[]ynab.Transaction{ledger("t1", "2026-02-01", -30000)},
		zeroTolerance(),
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, "t1", report.Matched[0].Ledger.ID)
	assert.Equal(t, 0, report.Matched[0].DateDiffDays)
	assert.Empty(t, report.MissingInLedger)
	assert.Empty(t, report.UnexpectedInLedger)
}

func TestMatch_RefundSymmetry(t *testing.T) {
	// Negative statement amount (refund) matches positive ledger inflow.
	report := Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-01", -50.00)},
		[]ynab.Transaction{ledger("t1", "2026-02-01", 50000)},
		zeroTolerance(),
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, "t1", report.Matched[0].Ledger.ID)
}

func TestMatch_AmountToleranceBoundary(t *testing.T) {
	cfg := Config{DateToleranceDays: 7, AmountTolerance: 0.01}

	// Difference exactly equal to the tolerance matches.
	report := Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-01", 30.00)},
		[]ynab.Transaction{ledger("t1", "2026-02-01", -30010)},
		cfg,
	)
	assert.Len(t, report.Matched, 1)

	// Half the tolerance matches.
	report = Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-01", 30.00)},
		[]ynab.Transaction{ledger("t1", "2026-02-01", -30005)},
		cfg,
	)
	assert.Len(t, report.Matched, 1)

	// Strictly greater does not.
	report = Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-01", 30.00)},
		[]ynab.Transaction{ledger("t1", "2026-02-01", -30020)},
		cfg,
	)
	assert.Empty(t, report.Matched)
	assert.Len(t, report.MissingInLedger, 1)
	assert.Len(t, report.UnexpectedInLedger, 1)
}

func TestMatch_DateToleranceBoundary(t *testing.T) {
	cfg := Config{DateToleranceDays: 3, AmountTolerance: 0.01}

	// Exactly at the boundary, both directions.
	report := Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-10", 30.00)},
		[]ynab.Transaction{ledger("t1", "2026-02-13", -30000)},
		cfg,
	)
	require.Len(t, report.Matched, 1)
	assert.Equal(t, 3, report.Matched[0].DateDiffDays)

	report = Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-10", 30.00)},
		[]ynab.Transaction{ledger("t1", "2026-02-07", -30000)},
		cfg,
	)
	require.Len(t, report.Matched, 1)
	assert.Equal(t, -3, report.Matched[0].DateDiffDays)

	// One day beyond does not match.
	report = Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-10", 30.00)},
		[]ynab.Transaction{ledger("t1", "2026-02-14", -30000)},
		cfg,
	)
	assert.Empty(t, report.Matched)
}

func TestMatch_PicksClosestDate(t *testing.T) {
	report := Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-10", 100.00)},
		[]ynab.Transaction{
			ledger("t1", "2026-02-13", -100000), // +3 days
			ledger("t2", "2026-02-11", -100000), // +1 day (closest)
			ledger("t3", "2026-02-08", -100000), // -2 days
		},
		DefaultConfig(),
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, "t2", report.Matched[0].Ledger.ID)
	assert.Equal(t, 1, report.Matched[0].DateDiffDays)
}

func TestMatch_TieBreakKeepsLedgerOrder(t *testing.T) {
	// Two candidates one day away in opposite directions: the first in ledger
	// input order wins.
	report := Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-10", 100.00)},
		[]ynab.Transaction{
			ledger("t1", "2026-02-11", -100000),
			ledger("t2", "2026-02-09", -100000),
		},
		DefaultConfig(),
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, "t1", report.Matched[0].Ledger.ID)
}

func TestMatch_OneToOneConsumption(t *testing.T) {
	// Two identical statement rows, one ledger row: only one can match.
	report := Match(
		[]storage.StatementTransaction{
			stmt(1, "2026-02-01", 30.00),
			stmt(2, "2026-02-01", 30.00),
		},
		[]ynab.Transaction{ledger("t1", "2026-02-01", -30000)},
		DefaultConfig(),
	)

	require.Len(t, report.Matched, 1)
	require.Len(t, report.MissingInLedger, 1)
	assert.Equal(t, int64(1), report.Matched[0].Statement.ID)
	assert.Equal(t, int64(2), report.MissingInLedger[0].ID)

	seen := make(map[string]bool)
	for _, m := range report.Matched {
		assert.False(t, seen[m.Ledger.ID], "ledger transaction consumed twice")
		seen[m.Ledger.ID] = true
	}
}

func TestMatch_ExhaustivePartition(t *testing.T) {
	statements := []storage.StatementTransaction{
		stmt(1, "2026-02-01", 414.00),
		stmt(2, "2026-02-03", 30.00),
		stmt(3, "2026-02-05", 12.50),
	}
	ledgerTxns := []ynab.Transaction{
		ledger("t1", "2026-02-01", -414000),
		ledger("t2", "2026-02-20", -999000),
	}

	report := Match(statements, ledgerTxns, DefaultConfig())

	assert.Equal(t, len(statements), len(report.Matched)+len(report.MissingInLedger))
	assert.Equal(t, len(ledgerTxns), len(report.Matched)+len(report.UnexpectedInLedger))
}

func TestMatch_ZeroAmounts(t *testing.T) {
	report := Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-01", 0)},
		[]ynab.Transaction{ledger("t1", "2026-02-01", 0)},
		zeroTolerance(),
	)

	assert.Len(t, report.Matched, 1)
}

func TestMatch_IdempotentRerun(t *testing.T) {
	statements := []storage.StatementTransaction{
		stmt(1, "2026-02-01", 414.00),
		stmt(2, "2026-02-03", 30.00),
	}
	ledgerTxns := []ynab.Transaction{
		ledger("t1", "2026-02-04", -30000),
		ledger("t2", "2026-02-01", -414000),
		ledger("t3", "2026-02-10", -77000),
	}

	first := Match(statements, ledgerTxns, DefaultConfig())
	second := Match(statements, ledgerTxns, DefaultConfig())

	assert.Equal(t, first, second)
}

func TestMatch_UnparseableLedgerDateNeverMatches(t *testing.T) {
	report := Match(
		[]storage.StatementTransaction{stmt(1, "2026-02-01", 30.00)},
		[]ynab.Transaction{ledger("t1", "garbage", -30000)},
		DefaultConfig(),
	)

	assert.Empty(t, report.Matched)
	assert.Len(t, report.MissingInLedger, 1)
	assert.Len(t, report.UnexpectedInLedger, 1)
}

func TestMatch_EmptyInputs(t *testing.T) {
	report := Match(nil, nil, DefaultConfig())

	assert.Empty(t, report.Matched)
	assert.Empty(t, report.MissingInLedger)
	assert.Empty(t, report.UnexpectedInLedger)
}

func TestMatch_StatementScenario(t *testing.T) {
	// statement {2026-02-01, 414.00, AT260320003000010160795}
	// vs ledger {2026-02-01, -414000} under default tolerances.
	statement := storage.StatementTransaction{
		ID:        1,
		Date:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:    414.00,
		Reference: "AT260320003000010160795",
	}

	report := Match(
		[]storage.StatementTransaction{statement},
		[]ynab.Transaction{ledger("t1", "2026-02-01", -414000)},
		Config{DateToleranceDays: 7, AmountTolerance: 0.01},
	)

	require.Len(t, report.Matched, 1)
	assert.Equal(t, 0, report.Matched[0].DateDiffDays)
	assert.Equal(t, "AT260320003000010160795", report.Matched[0].Statement.Reference)
	assert.Empty(t, report.MissingInLedger)
	assert.Empty(t, report.UnexpectedInLedger)
}
