package primary

import (
	"context"
	"time"
)

// WarService defines the primary port for war (campaign scope) operations.
type WarService interface {
	// CreateWar creates a war with the given global id.
	CreateWar(ctx context.Context, warID int64) (*War, error)

	// EnsureWar creates the war if it does not exist yet.
	EnsureWar(ctx context.Context, warID int64) (*EnsureWarResponse, error)

	// EndWar closes a war. A war ends exactly once.
	EndWar(ctx context.Context, warID int64) (*War, error)

	// GetWar retrieves a war by id.
	GetWar(ctx context.Context, warID int64) (*War, error)

	// ListWars retrieves all wars, newest first.
	ListWars(ctx context.Context) ([]*War, error)

	// DeleteWar always fails: wars are archive-only.
	DeleteWar(ctx context.Context, warID int64) error
}

// EnsureWarResponse contains the result of EnsureWar.
type EnsureWarResponse struct {
	War     *War
	Created bool
}

// War represents a war at the port boundary.
type War struct {
	ID        int64
	StartedAt time.Time
	EndedAt   *time.Time
}

// Ended reports whether the war is closed.
func (w *War) Ended() bool {
	return w.EndedAt != nil
}
