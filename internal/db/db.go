// Package db opens the shiptracker SQLite database and owns its schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultBusyTimeout is used when Open is given no busy timeout.
const DefaultBusyTimeout = 5 * time.Second

// Driver connection parameters:
//   - _txlock=immediate: BEGIN takes the write lock up front, so every write
//     transaction is serialized against other writers.
//   - _busy_timeout: wait at most this long for the lock, then fail with
//     SQLITE_BUSY. The driver does not interrupt this wait on ctx cancellation.
//   - WAL lets readers proceed while a writer holds the lock.
func dsnParams(busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}
	ms := busyTimeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("_foreign_keys=on&_journal_mode=WAL&_busy_timeout=%d&_txlock=immediate", ms)
}

// Open opens (creating if needed) the database at path and applies pending
// migrations. busyTimeout bounds how long a statement waits for another
// writer's lock; pass the store timeout so lock waits end with it.
func Open(ctx context.Context, path string, busyTimeout time.Duration) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	database, err := sql.Open("sqlite3", path+"?"+dsnParams(busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each :memory: connection is its own database.
	if path == ":memory:" {
		database.SetMaxOpenConns(1)
	}

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}
