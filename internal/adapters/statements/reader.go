// Package statements parses card statement exports into transactions ready
// for import into the local store.
package statements

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/reconview/ynab-reconciler/internal/infrastructure/storage"
)

// Expected CSV columns, by header name. The description column is optional.
const (
	columnDate        = "date"
	columnAmount      = "amount"
	columnReference   = "reference"
	columnDescription = "description"
)

// ReadCSV parses a card statement export. The first row must be a header
// containing at least date, amount and reference columns, in any order.
// Amounts are major units with charges positive. A malformed row aborts the
// whole read so a bad file never half-imports.
func ReadCSV(r io.Reader) ([]storage.StatementTransaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("statement file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var txns []storage.StatementTransaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		txn, err := parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

// columnIndexes holds the position of each known column in the header.
type columnIndexes struct {
	date        int
	amount      int
	reference   int
	description int // -1 when absent
}

func mapColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{date: -1, amount: -1, reference: -1, description: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case columnDate:
			cols.date = i
		case columnAmount:
			cols.amount = i
		case columnReference:
			cols.reference = i
		case columnDescription:
			cols.description = i
		}
	}

	var missing []string
	if cols.date == -1 {
		missing = append(missing, columnDate)
	}
	if cols.amount == -1 {
		missing = append(missing, columnAmount)
	}
	if cols.reference == -1 {
		missing = append(missing, columnReference)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRecord(record []string, cols columnIndexes) (storage.StatementTransaction, error) {
	var txn storage.StatementTransaction

	if len(record) <= cols.date || len(record) <= cols.amount || len(record) <= cols.reference {
		return txn, fmt.Errorf("too few fields")
	}

	date, err := time.Parse(storage.DateFormat, strings.TrimSpace(record[cols.date]))
	if err != nil {
		return txn, fmt.Errorf("invalid date %q", record[cols.date])
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(record[cols.amount]), 64)
	if err != nil {
		return txn, fmt.Errorf("invalid amount %q", record[cols.amount])
	}

	reference := strings.TrimSpace(record[cols.reference])
	if reference == "" {
		return txn, fmt.Errorf("reference is empty")
	}

	txn.Date = date
	txn.Amount = amount
	txn.Reference = reference
	if cols.description != -1 && len(record) > cols.description {
		txn.Description = strings.TrimSpace(record[cols.description])
	}
	return txn, nil
}
