// Package instance contains the pure rules for registering external views
// (rendered messages) of a ship.
package instance

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

// Action is what a registration should do once allowed.
type Action int

const (
	// ActionCreate inserts a new instance row.
	ActionCreate Action = iota
	// ActionReuse returns the row already bound to the same ship.
	ActionReuse
)

// RegisterContext provides context for instance registration guards.
type RegisterContext struct {
	ShipID     int64
	ShipExists bool
	GuildID    int64
	ChannelID  int64
	MessageID  int64
	IsOriginal bool
	// BoundShipID is the ship already registered at this (guild, channel,
	// message), or 0 when the triple is free.
	BoundShipID int64
	// BoundIsOriginal is the canonical flag of the row at the triple.
	BoundIsOriginal bool
	// HasOriginal reports whether the ship already has a canonical instance.
	HasOriginal bool
}

// CanRegister evaluates an instance registration.
// Rules:
// - The ship must exist
// - A triple already bound to the same ship is reused (idempotent) when the
//   canonical flag matches; a flag change is rejected
// - A triple bound to another ship is rejected
// - A ship has at most one canonical instance
func CanRegister(ctx RegisterContext) (Action, GuardResult) {
	if !ctx.ShipExists {
		return ActionCreate, deny(apperr.NotFound, "ship %d not found", ctx.ShipID)
	}
	if ctx.GuildID == 0 || ctx.ChannelID == 0 || ctx.MessageID == 0 {
		return ActionCreate, deny(apperr.Validation, "guild, channel and message ids are required")
	}
	if ctx.BoundShipID != 0 {
		if ctx.BoundShipID == ctx.ShipID {
			if ctx.BoundIsOriginal != ctx.IsOriginal {
				return ActionCreate, deny(apperr.Validation,
					"message %d in channel %d is already registered to ship %d with original=%t", ctx.MessageID, ctx.ChannelID, ctx.ShipID, ctx.BoundIsOriginal)
			}
			return ActionReuse, GuardResult{Allowed: true}
		}
		return ActionCreate, deny(apperr.Validation,
			"message %d in channel %d is already registered to ship %d", ctx.MessageID, ctx.ChannelID, ctx.BoundShipID)
	}
	if ctx.IsOriginal && ctx.HasOriginal {
		return ActionCreate, deny(apperr.Validation, "ship %d already has a canonical instance", ctx.ShipID)
	}
	return ActionCreate, GuardResult{Allowed: true}
}
