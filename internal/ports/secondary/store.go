// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// Transactor runs a unit of work in one serializable transaction.
// Repositories called with the context passed to fn join that transaction.
// Nested calls join the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// WarRepository defines the secondary port for war persistence.
type WarRepository interface {
	// Create persists a new war.
	Create(ctx context.Context, war *WarRecord) error

	// GetByID retrieves a war by its id.
	GetByID(ctx context.Context, id int64) (*WarRecord, error)

	// List retrieves all wars, newest first.
	List(ctx context.Context) ([]*WarRecord, error)

	// End sets ended_at. Ending a war twice fails at the storage boundary.
	End(ctx context.Context, id int64, at int64) error
}

// WarRecord represents a war as stored in persistence.
// Timestamps are unix microseconds; EndedAt is 0 while the war is open.
type WarRecord struct {
	ID        int64
	StartedAt int64
	EndedAt   int64
}

// ShipRepository defines the secondary port for ship persistence.
// There is no delete: ships are archive-only.
type ShipRepository interface {
	// Create persists a new ship and fills in its id.
	Create(ctx context.Context, ship *ShipRecord) error

	// GetByID retrieves a ship by its id.
	GetByID(ctx context.Context, id int64) (*ShipRecord, error)

	// GetByName retrieves a ship by its scoped name.
	GetByName(ctx context.Context, guildID, warID int64, name string) (*ShipRecord, error)

	// GetByShareCode retrieves the ship holding a share code.
	GetByShareCode(ctx context.Context, code string) (*ShipRecord, error)

	// NameExists reports whether a name is taken in (guild, war).
	NameExists(ctx context.Context, guildID, warID int64, name string) (bool, error)

	// List retrieves ships matching the given filters.
	List(ctx context.Context, filters ShipFilters) ([]*ShipRecord, error)

	// LinkGroup retrieves the root ship and every ship linked to it, root first.
	LinkGroup(ctx context.Context, rootID int64) ([]*ShipRecord, error)

	// SetField stores one column and bumps updated_at to a value strictly
	// greater than before (at least at). Returns the new updated_at.
	SetField(ctx context.Context, id int64, field string, value any, at int64) (int64, error)
}

// ShipRecord represents a ship as stored in persistence.
type ShipRecord struct {
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
	SquadLockUntil int64 // unix seconds, 0 = unlocked
	Keys           string
	ImageURL       string
	Regiment       string
	ShareCode      string
	LinkRootID     int64 // 0 = not linked
	CreatedAt      int64
	UpdatedAt      int64
}

// ShipFilters contains filter options for querying ships.
type ShipFilters struct {
	GuildID      int64
	WarID        int64
	Status       string
	NameContains string
	ExcludeDead  bool
	Limit        int
}

// SupplyRepository defines the secondary port for per-ship supplies.
type SupplyRepository interface {
	// Get retrieves one supply row, or nil if the ship has none of resource.
	Get(ctx context.Context, shipID int64, resource string) (*SupplyRecord, error)

	// Upsert stores an absolute quantity.
	Upsert(ctx context.Context, supply *SupplyRecord) error

	// List retrieves a ship's supplies ordered by resource.
	List(ctx context.Context, shipID int64) ([]*SupplyRecord, error)
}

// SupplyRecord represents a supply row.
type SupplyRecord struct {
	ShipID    int64
	Resource  string
	Quantity  int64
	UpdatedAt int64
}

// InstanceRepository defines the secondary port for registered external views.
type InstanceRepository interface {
	// Create persists a new instance and fills in its id.
	Create(ctx context.Context, instance *InstanceRecord) error

	// GetByTriple retrieves the instance at (guild, channel, message), or nil.
	GetByTriple(ctx context.Context, guildID, channelID, messageID int64) (*InstanceRecord, error)

	// HasOriginal reports whether the ship has a canonical instance.
	HasOriginal(ctx context.Context, shipID int64) (bool, error)

	// ListByShips retrieves the instances of the given ships, oldest first.
	ListByShips(ctx context.Context, shipIDs []int64) ([]*InstanceRecord, error)

	// GuildsForShip returns the distinct guilds holding an instance of the ship.
	GuildsForShip(ctx context.Context, shipID int64) ([]int64, error)
}

// InstanceRecord represents one external view of a ship.
type InstanceRecord struct {
	ID         int64
	ShipID     int64
	GuildID    int64
	ChannelID  int64
	MessageID  int64
	IsOriginal bool
	CreatedAt  int64
}

// GrantRepository defines the secondary port for authorization grants.
// Grant writes are idempotent.
type GrantRepository interface {
	AddGuildRole(ctx context.Context, guildID, roleID int64) error
	RemoveGuildRole(ctx context.Context, guildID, roleID int64) error
	ListGuildRoles(ctx context.Context, guildID int64) ([]int64, error)

	AddGuildUser(ctx context.Context, guildID, userID int64) error
	RemoveGuildUser(ctx context.Context, guildID, userID int64) error
	ListGuildUsers(ctx context.Context, guildID int64) ([]int64, error)

	AddShipUser(ctx context.Context, grant *ShipGrantRecord) error
	RemoveShipUser(ctx context.Context, shipID, userID int64) error
	ListShipUsers(ctx context.Context, shipID int64) ([]*ShipGrantRecord, error)
}

// ShipGrantRecord is a per-ship user grant.
type ShipGrantRecord struct {
	ShipID    int64
	UserID    int64
	GrantedBy int64
	CreatedAt int64
}
