package storage

import (
	"database/sql"
	"fmt"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "statement_transactions",
		Up:      migration001StatementTransactions,
	},
	{
		Version: 2,
		Name:    "reconciliation_runs",
		Up:      migration002ReconciliationRuns,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// migration001StatementTransactions creates the statement_transactions table.
// reference carries a UNIQUE constraint: the issuer guarantees it is globally
// unique, and INSERT OR IGNORE on it makes re-imports duplicate-safe.
func migration001StatementTransactions(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS statement_transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			txn_date TEXT NOT NULL,
			amount REAL NOT NULL,
			reference TEXT UNIQUE NOT NULL,
			description TEXT DEFAULT '',
			ledger_txn_id TEXT,
			reconciled_at TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_statement_transactions_date
		 ON statement_transactions(txn_date)`,

		`CREATE INDEX IF NOT EXISTS idx_statement_transactions_ledger
		 ON statement_transactions(ledger_txn_id) WHERE ledger_txn_id IS NOT NULL`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// migration002ReconciliationRuns creates the append-only run log table
func migration002ReconciliationRuns(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reconciliation_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_uid TEXT UNIQUE NOT NULL,
			budget_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			matched_count INTEGER DEFAULT 0,
			missing_count INTEGER DEFAULT 0,
			unexpected_count INTEGER DEFAULT 0,
			persisted BOOLEAN DEFAULT 0,
			config_json TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reconciliation_runs_account
		 ON reconciliation_runs(budget_id, account_id)`,

		`CREATE INDEX IF NOT EXISTS idx_reconciliation_runs_created
		 ON reconciliation_runs(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
