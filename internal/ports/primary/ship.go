package primary

import (
	"context"
	"time"
)

// ShipService defines the primary port for ship operations.
// Every mutation is authorized against the principal in ctx and returns the
// external views to refresh.
type ShipService interface {
	// CreateShip creates a ship in (guild, war).
	CreateShip(ctx context.Context, req CreateShipRequest) (*ShipResult, error)

	// GetShip retrieves a ship by id.
	GetShip(ctx context.Context, shipID int64) (*Ship, error)

	// GetShipByName retrieves a ship by its scoped name.
	GetShipByName(ctx context.Context, guildID, warID int64, name string) (*Ship, error)

	// ListShips retrieves ships matching the given filters.
	ListShips(ctx context.Context, filters ShipFilters) ([]*Ship, error)

	// UpdateShipField sets one field across the ship's link group.
	UpdateShipField(ctx context.Context, req UpdateShipFieldRequest) (*ShipResult, error)

	// EditShipFields sets several fields in one transaction.
	EditShipFields(ctx context.Context, req EditShipFieldsRequest) (*ShipResult, error)

	StartRepairs(ctx context.Context, shipID int64, drydock string) (*ShipResult, error)
	FinishRepairs(ctx context.Context, shipID int64, parkedAt, notes string) (*ShipResult, error)
	Depart(ctx context.Context, shipID int64) (*ShipResult, error)
	ReturnToPort(ctx context.Context, req ReturnToPortRequest) (*ShipResult, error)
	MarkDead(ctx context.Context, shipID int64) (*ShipResult, error)

	// LockSquad locks the squad for d (0 = default duration).
	LockSquad(ctx context.Context, shipID int64, d time.Duration) (*ShipResult, error)

	// ClearSquadLock releases the squad lock.
	ClearSquadLock(ctx context.Context, shipID int64) (*ShipResult, error)

	// LinkShip makes shipID a copy in rootID's link group.
	LinkShip(ctx context.Context, shipID, rootID int64) (*ShipResult, error)

	// DeleteShip always fails: ships are archive-only.
	DeleteShip(ctx context.Context, shipID int64) error

	// AdjustSupply applies a signed delta to a resource quantity.
	AdjustSupply(ctx context.Context, req AdjustSupplyRequest) (*SupplyResult, error)

	// SetSupply sets an absolute resource quantity.
	SetSupply(ctx context.Context, req SetSupplyRequest) (*SupplyResult, error)

	// ListSupplies retrieves a ship's supplies.
	ListSupplies(ctx context.Context, shipID int64) ([]*Supply, error)

	// GenerateShareCode stores a fresh one-time share code on the ship.
	GenerateShareCode(ctx context.Context, shipID int64) (*ShareCodeResult, error)

	// RedeemShareCode consumes a share code and registers a view of the
	// shared ship in the redeeming guild.
	RedeemShareCode(ctx context.Context, req RedeemShareCodeRequest) (*RedeemShareCodeResult, error)
}

// CreateShipRequest contains parameters for creating a ship.
// Defaults are raw field values, normalized like updates.
type CreateShipRequest struct {
	GuildID  int64
	WarID    int64
	Name     string
	Defaults map[string]string
}

// UpdateShipFieldRequest contains parameters for a single field update.
type UpdateShipFieldRequest struct {
	ShipID int64
	Field  string
	Value  string
}

// FieldChange is one raw field assignment.
type FieldChange struct {
	Field string
	Value string
}

// EditShipFieldsRequest contains several field changes applied together.
type EditShipFieldsRequest struct {
	ShipID  int64
	Changes []FieldChange
}

// ReturnToPortRequest contains parameters for returning a ship to port.
type ReturnToPortRequest struct {
	ShipID int64
	Where  string
	Damage string
	Notes  string
}

// AdjustSupplyRequest contains parameters for a supply delta.
type AdjustSupplyRequest struct {
	ShipID   int64
	Resource string
	Delta    int64
}

// SetSupplyRequest contains parameters for an absolute supply quantity.
type SetSupplyRequest struct {
	ShipID   int64
	Resource string
	Quantity int64
}

// RedeemShareCodeRequest identifies the code and the view it becomes.
type RedeemShareCodeRequest struct {
	Code      string
	GuildID   int64
	ChannelID int64
	MessageID int64
}

// ShipResult is returned by every ship mutation.
type ShipResult struct {
	Ship *Ship
	// Changed lists every ship row the mutation touched (link group copies included).
	Changed []*Ship
	// Fanout lists the external views to refresh.
	Fanout []*Instance
	// OpID groups the audit rows written by the mutation.
	OpID string
}

// SupplyResult is returned by supply mutations.
type SupplyResult struct {
	Supply *Supply
	Fanout []*Instance
}

// ShareCodeResult is returned by GenerateShareCode.
type ShareCodeResult struct {
	Code string
	Ship *Ship
}

// RedeemShareCodeResult is returned by RedeemShareCode.
type RedeemShareCodeResult struct {
	Ship     *Ship
	Instance *Instance
	Fanout   []*Instance
}

// Ship represents a ship at the port boundary.
type Ship struct {
	ID             int64
	GuildID        int64
	WarID          int64
	Type           string
	Name           string
	Status         string
	Damage         int64
	Location       string
	HomePort       string
	Notes          string
	Keys           string
	ImageURL       string
	Regiment       string
	ShareCode      string
	LinkRootID     int64
	SquadLockUntil int64
	// SquadLocked is derived from SquadLockUntil at read time.
	SquadLocked bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShipFilters contains filter options for listing ships.
type ShipFilters struct {
	GuildID      int64
	WarID        int64
	Status       string
	NameContains string
	ExcludeDead  bool
	Limit        int
}

// Supply represents a supply row at the port boundary.
type Supply struct {
	ShipID    int64
	Resource  string
	Quantity  int64
	UpdatedAt time.Time
}
