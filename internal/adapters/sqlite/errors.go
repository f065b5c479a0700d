package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/example/shiptracker/internal/apperr"
)

// classify maps a driver error to an apperr kind. op names the failed
// operation ("create ship") and prefixes the message.
//
// Trigger aborts carry a stable message prefix set in db.SchemaSQL.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if apperr.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Wrap(apperr.NotFound, err, "failed to %s", op)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.StoreUnavailable, err, "failed to %s", op)
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return apperr.Wrap(apperr.StoreUnavailable, err, "failed to %s", op)
	}

	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "immutable scope"):
		return apperr.Wrap(apperr.ImmutableScope, err, "failed to %s", op)
	case strings.Contains(msg, "archive-only"), strings.Contains(msg, "append-only"):
		return apperr.Wrap(apperr.OperationForbidden, err, "failed to %s", op)
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return apperr.Wrap(apperr.DuplicateName, err, "failed to %s", op)
	case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintTrigger:
		return apperr.Wrap(apperr.Validation, err, "failed to %s", op)
	case sqlite3.ErrConstraintForeignKey:
		return apperr.Wrap(apperr.NotFound, err, "failed to %s", op)
	}

	// busy, locked, I/O, full disk and everything else
	return apperr.Wrap(apperr.StoreUnavailable, err, "failed to %s", op)
}
