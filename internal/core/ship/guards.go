// Package ship contains the pure business logic for ship operations.
// Guards are pure functions that evaluate preconditions without side effects.
package ship

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

func allow() GuardResult {
	return GuardResult{Allowed: true}
}

func deny(code apperr.Code, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Code: code, Reason: fmt.Sprintf(format, args...)}
}

// CreateShipContext provides context for ship creation guards.
type CreateShipContext struct {
	GuildID   int64
	WarID     int64
	Name      string
	WarExists bool
	WarEnded  bool
	NameTaken bool
}

// CanCreateShip evaluates whether a ship can be created.
// Rules:
// - War must exist
// - War must not be ended
// - Name must be free within (guild, war)
func CanCreateShip(ctx CreateShipContext) GuardResult {
	if !ctx.WarExists {
		return deny(apperr.NotFound, "war %d not found", ctx.WarID)
	}
	if ctx.WarEnded {
		return deny(apperr.Validation, "war %d has ended; ships can no longer be created in it", ctx.WarID)
	}
	if ctx.NameTaken {
		return deny(apperr.DuplicateName, "ship %q already exists in guild %d war %d", ctx.Name, ctx.GuildID, ctx.WarID)
	}
	return allow()
}

// CanDeleteShip always denies: ships are archive-only.
func CanDeleteShip(shipID int64) GuardResult {
	return deny(apperr.OperationForbidden, "ship %d cannot be deleted: ships are archive-only", shipID)
}

// LinkShipContext provides context for linking a ship to a root ship.
type LinkShipContext struct {
	ShipID        int64
	RootID        int64
	RootExists    bool
	AlreadyLinked bool
	// HasCopies reports whether other ships are already linked to ShipID.
	HasCopies bool
}

// CanLinkShip evaluates whether a ship can be linked under a root.
// Rules:
// - A ship cannot link to itself
// - The root must exist
// - A ship that already has a root keeps it
// - A ship that is itself a root cannot become a copy
func CanLinkShip(ctx LinkShipContext) GuardResult {
	if ctx.ShipID == ctx.RootID {
		return deny(apperr.Validation, "ship %d cannot be linked to itself", ctx.ShipID)
	}
	if !ctx.RootExists {
		return deny(apperr.NotFound, "root ship %d not found", ctx.RootID)
	}
	if ctx.AlreadyLinked {
		return deny(apperr.Validation, "ship %d is already linked", ctx.ShipID)
	}
	if ctx.HasCopies {
		return deny(apperr.Validation, "ship %d is the root of a link group", ctx.ShipID)
	}
	return allow()
}

// SupplyContext provides context for supply adjustment guards.
type SupplyContext struct {
	ShipID   int64
	Resource string
	Current  int64
	Delta    int64
}

// CanAdjustSupply evaluates whether a supply adjustment keeps the quantity
// non-negative and returns the resulting quantity.
func CanAdjustSupply(ctx SupplyContext) (int64, GuardResult) {
	if ctx.Resource == "" {
		return 0, deny(apperr.Validation, "resource name is required")
	}
	next := ctx.Current + ctx.Delta
	if next < 0 {
		return 0, deny(apperr.Validation, "supply %q on ship %d cannot go negative (have %d, delta %d)",
			ctx.Resource, ctx.ShipID, ctx.Current, ctx.Delta)
	}
	return next, allow()
}
