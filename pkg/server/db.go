package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blackjackd/pkg/server/internal/db"
)

// Accounts defines the interface for persistent balance operations
type Accounts interface {
	// GetOrCreateBalance returns the account balance, creating the account
	// with the starting balance when it does not exist yet
	GetOrCreateBalance(username string, starting int64) (int64, error)
	// SetBalance stores the account's new balance and records it in the
	// audit log
	SetBalance(username string, balance int64, reason string) error
	// PruneBalanceLog deletes audit entries older than the given age
	PruneBalanceLog(olderThan time.Duration) (int64, error)
	// Ping reports whether the database is reachable
	Ping(ctx context.Context) error
	// Close closes the database connection
	Close() error
}

// NewAccounts creates a new accounts database connection
func NewAccounts(dbPath string) (Accounts, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	// Create the database
	return db.NewDB(dbPath)
}
