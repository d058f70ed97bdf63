package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for statement transactions and
// reconciliation run logs. It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// InsertTransactions stores imported statement rows, skipping any whose
// reference already exists.
func (s *Storage) InsertTransactions(txns []StatementTransaction) (int, int, error) {
	query := `
		INSERT OR IGNORE INTO statement_transactions (txn_date, amount, reference, description)
		VALUES (?, ?, ?, ?)
	`

	inserted := 0
	for _, txn := range txns {
		result, err := s.db.Exec(query,
			txn.Date.Format(DateFormat),
			txn.Amount,
			txn.Reference,
			txn.Description,
		)
		if err != nil {
			return inserted, len(txns) - inserted, fmt.Errorf("failed to insert reference %s: %w", txn.Reference, err)
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			inserted++
		}
	}

	return inserted, len(txns) - inserted, nil
}

// ListByDateRange returns transactions inside [start, end], ordered by date then id
func (s *Storage) ListByDateRange(start, end time.Time) ([]StatementTransaction, error) {
	query := `
		SELECT id, txn_date, amount, reference, description, ledger_txn_id, reconciled_at
		FROM statement_transactions
		WHERE txn_date >= ? AND txn_date <= ?
		ORDER BY txn_date ASC, id ASC
	`

	rows, err := s.db.Query(query, start.Format(DateFormat), end.Format(DateFormat))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txns []StatementTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}

	return txns, rows.Err()
}

// GetTransaction retrieves a transaction by id, nil when absent
func (s *Storage) GetTransaction(id int64) (*StatementTransaction, error) {
	query := `
		SELECT id, txn_date, amount, reference, description, ledger_txn_id, reconciled_at
		FROM statement_transactions
		WHERE id = ?
	`

	row := s.db.QueryRow(query, id)
	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// BatchMarkReconciled marks each pair as reconciled. Each row is one atomic
// UPDATE; a failing or missing row is recorded per-id and the batch continues.
func (s *Storage) BatchMarkReconciled(pairs []MatchPair) (*BatchResult, error) {
	query := `
		UPDATE statement_transactions
		SET ledger_txn_id = ?, reconciled_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result := &BatchResult{Errors: make(map[int64]string)}
	for _, pair := range pairs {
		res, err := s.db.Exec(query, pair.LedgerTxnID, pair.StatementID)
		if err != nil {
			result.Errors[pair.StatementID] = err.Error()
			continue
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			result.Errors[pair.StatementID] = "statement transaction not found"
			continue
		}
		result.UpdatedCount++
	}

	return result, nil
}

// Unmark clears the reconciliation marker, returning whether a marked row
// was actually cleared.
func (s *Storage) Unmark(id int64) (bool, error) {
	query := `
		UPDATE statement_transactions
		SET ledger_txn_id = NULL, reconciled_at = NULL
		WHERE id = ? AND ledger_txn_id IS NOT NULL
	`

	res, err := s.db.Exec(query, id)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// ReconciledLedgerIDs returns every reconciled ledger id keyed to its
// statement transaction id.
func (s *Storage) ReconciledLedgerIDs() (map[string]int64, error) {
	rows, err := s.db.Query(`
		SELECT id, ledger_txn_id FROM statement_transactions
		WHERE ledger_txn_id IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var ledgerID string
		if err := rows.Scan(&id, &ledgerID); err != nil {
			return nil, err
		}
		ids[ledgerID] = id
	}

	return ids, rows.Err()
}

// AppendRunLog records one completed run and returns its id
func (s *Storage) AppendRunLog(run *ReconciliationRun) (int64, error) {
	if run.RunUID == "" {
		run.RunUID = uuid.NewString()
	}

	query := `
		INSERT INTO reconciliation_runs
		(run_uid, budget_id, account_id, start_date, end_date,
		 matched_count, missing_count, unexpected_count, persisted, config_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		run.RunUID,
		run.BudgetID,
		run.AccountID,
		run.StartDate.Format(DateFormat),
		run.EndDate.Format(DateFormat),
		run.MatchedCount,
		run.MissingCount,
		run.UnexpectedCount,
		run.Persisted,
		run.ConfigJSON,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// ListRuns returns recent runs, newest first
func (s *Storage) ListRuns(limit int) ([]ReconciliationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, run_uid, budget_id, account_id, start_date, end_date,
		       matched_count, missing_count, unexpected_count, persisted, config_json, created_at
		FROM reconciliation_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []ReconciliationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetRun retrieves a run by id, nil when absent
func (s *Storage) GetRun(id int64) (*ReconciliationRun, error) {
	row := s.db.QueryRow(`
		SELECT id, run_uid, budget_id, account_id, start_date, end_date,
		       matched_count, missing_count, unexpected_count, persisted, config_json, created_at
		FROM reconciliation_runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// scanner abstracts *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (*StatementTransaction, error) {
	txn := &StatementTransaction{}
	var date string
	var ledgerID sql.NullString
	var reconciledAt sql.NullTime

	err := row.Scan(&txn.ID, &date, &txn.Amount, &txn.Reference, &txn.Description, &ledgerID, &reconciledAt)
	if err != nil {
		return nil, err
	}

	txn.Date, err = time.Parse(DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("bad txn_date %q: %w", date, err)
	}
	if ledgerID.Valid {
		txn.LedgerTxnID = ledgerID.String
	}
	if reconciledAt.Valid {
		ts := reconciledAt.Time
		txn.ReconciledAt = &ts
	}

	return txn, nil
}

func scanRun(row scanner) (*ReconciliationRun, error) {
	run := &ReconciliationRun{}
	var startDate, endDate string
	var createdAt sql.NullTime

	err := row.Scan(&run.ID, &run.RunUID, &run.BudgetID, &run.AccountID,
		&startDate, &endDate,
		&run.MatchedCount, &run.MissingCount, &run.UnexpectedCount,
		&run.Persisted, &run.ConfigJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	run.StartDate, err = time.Parse(DateFormat, startDate)
	if err != nil {
		return nil, fmt.Errorf("bad start_date %q: %w", startDate, err)
	}
	run.EndDate, err = time.Parse(DateFormat, endDate)
	if err != nil {
		return nil, fmt.Errorf("bad end_date %q: %w", endDate, err)
	}
	if createdAt.Valid {
		run.CreatedAt = createdAt.Time
	}

	return run, nil
}
