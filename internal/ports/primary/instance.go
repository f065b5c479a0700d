package primary

import (
	"context"
	"time"
)

// InstanceService defines the primary port for the registry of external
// views (rendered messages) of ships.
type InstanceService interface {
	// RegisterInstance binds a (guild, channel, message) to a ship.
	RegisterInstance(ctx context.Context, req RegisterInstanceRequest) (*RegisterInstanceResponse, error)

	// ListInstances retrieves the views of one ship.
	ListInstances(ctx context.Context, shipID int64) ([]*Instance, error)

	// ListFanout retrieves the views of every ship in the ship's link group.
	ListFanout(ctx context.Context, shipID int64) ([]*Instance, error)
}

// RegisterInstanceRequest contains parameters for registering a view.
type RegisterInstanceRequest struct {
	ShipID     int64
	GuildID    int64
	ChannelID  int64
	MessageID  int64
	IsOriginal bool
}

// RegisterInstanceResponse contains the registered view. Created is false
// when the triple was already bound to the same ship.
type RegisterInstanceResponse struct {
	Instance *Instance
	Created  bool
}

// Instance represents one external view at the port boundary.
type Instance struct {
	ID         int64
	ShipID     int64
	GuildID    int64
	ChannelID  int64
	MessageID  int64
	IsOriginal bool
	CreatedAt  time.Time
}
