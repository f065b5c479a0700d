// Package war contains the pure business logic for war (campaign scope) operations.
package war

import (
	"fmt"

	"github.com/example/shiptracker/internal/apperr"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Code    apperr.Code
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return apperr.New(r.Code, "%s", r.Reason)
}

func deny(code apperr.Code, format string, args ...any) GuardResult {
	return GuardResult{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// CreateWarContext provides context for war creation guards.
type CreateWarContext struct {
	WarID  int64
	Exists bool
}

// CanCreateWar evaluates whether a war can be created.
// Rules:
// - War ids are positive
// - War ids are globally unique
func CanCreateWar(ctx CreateWarContext) GuardResult {
	if ctx.WarID <= 0 {
		return deny(apperr.Validation, "war id must be positive, got %d", ctx.WarID)
	}
	if ctx.Exists {
		return deny(apperr.DuplicateName, "war %d already exists", ctx.WarID)
	}
	return GuardResult{Allowed: true}
}

// EndWarContext provides context for ending a war.
type EndWarContext struct {
	WarID  int64
	Exists bool
	Ended  bool
}

// CanEndWar evaluates whether a war can be ended. A war ends exactly once.
func CanEndWar(ctx EndWarContext) GuardResult {
	if !ctx.Exists {
		return deny(apperr.NotFound, "war %d not found", ctx.WarID)
	}
	if ctx.Ended {
		return deny(apperr.Validation, "war %d has already ended", ctx.WarID)
	}
	return GuardResult{Allowed: true}
}

// CanDeleteWar always denies: wars are archive-only.
func CanDeleteWar(warID int64) GuardResult {
	return deny(apperr.OperationForbidden, "war %d cannot be deleted: wars are archive-only", warID)
}
