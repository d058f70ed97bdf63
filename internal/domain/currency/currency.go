// Package currency converts between statement amounts (decimal major units)
// and YNAB milliunits (integer, 1000 per major unit), and derives the
// deterministic import id used to keep ledger creation idempotent.
package currency

import (
	"fmt"
	"math"
)

// MilliunitsPerUnit is the YNAB sub-unit scale.
const MilliunitsPerUnit = 1000

// ToMilliunits converts a major-unit amount to milliunits, rounding to the
// nearest integer. Rounding (not truncation) absorbs the representation error
// of decimal currency math, e.g. 29.99*1000 = 29989.999...
func ToMilliunits(amount float64) int64 {
	return int64(math.Round(amount * MilliunitsPerUnit))
}

// FromMilliunits converts milliunits back to a major-unit amount.
func FromMilliunits(m int64) float64 {
	return float64(m) / MilliunitsPerUnit
}

// ImportID builds the idempotency key for pushing a statement transaction to
// the ledger. The amount is the statement amount (positive = charge); the key
// carries the milliunit amount in the ledger's sign convention so it matches
// what goes on the wire. Identical inputs always produce identical keys.
func ImportID(amount float64, date, reference string) string {
	ref := reference
	if len(ref) > 12 {
		ref = ref[:12]
	}
	return fmt.Sprintf("CC:%d:%s:%s", -ToMilliunits(amount), date, ref)
}
