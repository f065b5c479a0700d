package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"

	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/db"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Code
	}{
		{"no rows", sql.ErrNoRows, apperr.NotFound},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), apperr.StoreUnavailable},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, apperr.StoreUnavailable},
		{"locked", sqlite3.Error{Code: sqlite3.ErrLocked}, apperr.StoreUnavailable},
		{"unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, apperr.DuplicateName},
		{"check", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}, apperr.Validation},
		{"foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, apperr.NotFound},
		{"other driver error", errors.New("disk I/O error"), apperr.StoreUnavailable},
		{"already classified", apperr.New(apperr.NotAuthorized, "no"), apperr.NotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, "test op")
			if !apperr.IsCode(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %s", tt.err, got, tt.want)
			}
		})
	}

	if classify(nil, "noop") != nil {
		t.Error("classify(nil) must be nil")
	}
}

func TestClassify_TriggerMessages(t *testing.T) {
	database := openTriggerDB(t)

	_, err := database.Exec("UPDATE ships SET war_id = 2 WHERE id = 1")
	if got := classify(err, "move ship"); !apperr.IsCode(got, apperr.ImmutableScope) {
		t.Errorf("scope change = %v, want ImmutableScope", got)
	}

	_, err = database.Exec("DELETE FROM ships WHERE id = 1")
	if got := classify(err, "delete ship"); !apperr.IsCode(got, apperr.OperationForbidden) {
		t.Errorf("delete = %v, want OperationForbidden", got)
	}
}

func openTriggerDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), 0)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	for _, q := range []string{
		"INSERT INTO wars (id, started_at) VALUES (1, 1), (2, 1)",
		"INSERT INTO ships (id, guild_id, war_id, name, created_at, updated_at) VALUES (1, 7, 1, 'Alpha', 1, 1)",
	} {
		if _, err := database.Exec(q); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	return database
}
