package matcher

import (
	"github.com/reconview/ynab-reconciler/internal/adapters/ynab"
	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// Config holds matching tolerances.
type Config struct {
	DateToleranceDays int     `json:"date_tolerance_days"` // max |day difference|
	AmountTolerance   float64 `json:"amount_tolerance"`    // major units, default 0.01
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		DateToleranceDays: 7,
		AmountTolerance:   0.01,
	}
}

// Pair is exactly one statement transaction matched with exactly one ledger
// transaction. DateDiffDays is ledger date minus statement date, sign
// preserved for display.
type Pair struct {
	Statement    storage.StatementTransaction `json:"statement"`
	Ledger       ynab.Transaction             `json:"ledger"`
	DateDiffDays int                          `json:"date_diff_days"`
}

// Report partitions both input sets into three mutually exclusive,
// collectively exhaustive groups. It is rebuilt from scratch on every run and
// never persisted; only its side effects are.
type Report struct {
	Matched            []Pair                         `json:"matched"`
	MissingInLedger    []storage.StatementTransaction `json:"missing_in_ledger"`
	UnexpectedInLedger []ynab.Transaction             `json:"unexpected_in_ledger"`
}
