// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database is created for tests.
// setupTestDB goes through db.Open, which applies the authoritative schema
// and migrations, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/example/shiptracker/internal/db"
)

// setupTestDB creates a file-backed database in a temp dir. A file is used
// rather than :memory: so transactions see the same database as plain reads.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), 0)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedWar inserts an open war.
func seedWar(t *testing.T, database *sql.DB, id int64) {
	t.Helper()
	if _, err := database.Exec("INSERT INTO wars (id, started_at) VALUES (?, 1)", id); err != nil {
		t.Fatalf("failed to seed war: %v", err)
	}
}

// seedShip inserts a Parked ship and returns its id.
func seedShip(t *testing.T, database *sql.DB, guildID, warID int64, name string) int64 {
	t.Helper()
	result, err := database.Exec(
		"INSERT INTO ships (guild_id, war_id, name, created_at, updated_at) VALUES (?, ?, ?, 1, 1)",
		guildID, warID, name)
	if err != nil {
		t.Fatalf("failed to seed ship: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

// seedInstance inserts an instance row.
func seedInstance(t *testing.T, database *sql.DB, shipID, guildID, channelID, messageID int64, original bool) {
	t.Helper()
	_, err := database.Exec(
		"INSERT INTO ship_instances (ship_id, guild_id, channel_id, message_id, is_original, created_at) VALUES (?, ?, ?, ?, ?, 1)",
		shipID, guildID, channelID, messageID, original)
	if err != nil {
		t.Fatalf("failed to seed instance: %v", err)
	}
}
