package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DB represents the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary database tables
func createTables(db *sql.DB) error {
	// Create accounts table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			username TEXT PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Create balance audit table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS balance_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			balance INTEGER NOT NULL,
			reason TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (username) REFERENCES accounts(username)
		)
	`)
	if err != nil {
		return err
	}

	return nil
}

// GetOrCreateBalance returns the account balance, creating the account with
// the starting balance when it does not exist yet.
func (db *DB) GetOrCreateBalance(username string, starting int64) (int64, error) {
	var balance int64
	err := db.QueryRow("SELECT balance FROM accounts WHERE username = ?", username).Scan(&balance)
	if err == sql.ErrNoRows {
		_, err = db.Exec(`
			INSERT INTO accounts (username, balance)
			VALUES (?, ?)
		`, username, starting)
		if err != nil {
			return 0, fmt.Errorf("failed to create account: %v", err)
		}
		return starting, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get account balance: %v", err)
	}
	return balance, nil
}

// SetBalance stores the account's new balance and records it in the audit
// log. Stored balances never go negative.
func (db *DB) SetBalance(username string, balance int64, reason string) error {
	if balance < 0 {
		balance = 0
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Update account balance
	_, err = tx.Exec(`
		INSERT INTO accounts (username, balance)
		VALUES (?, ?)
		ON CONFLICT(username) DO UPDATE SET balance = excluded.balance, updated_at = CURRENT_TIMESTAMP
	`, username, balance)
	if err != nil {
		return err
	}

	// Record audit entry
	_, err = tx.Exec(`
		INSERT INTO balance_log (username, balance, reason)
		VALUES (?, ?, ?)
	`, username, balance, reason)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// PruneBalanceLog deletes audit entries older than the given age and
// returns how many rows were removed.
func (db *DB) PruneBalanceLog(olderThan time.Duration) (int64, error) {
	modifier := fmt.Sprintf("-%d seconds", int64(olderThan.Seconds()))
	res, err := db.Exec(`
		DELETE FROM balance_log WHERE created_at < datetime('now', ?)
	`, modifier)
	if err != nil {
		return 0, fmt.Errorf("failed to prune balance log: %v", err)
	}
	return res.RowsAffected()
}

// Ping reports whether the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
