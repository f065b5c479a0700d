package primary

import "context"

// AuthService defines the primary port for authorization.
type AuthService interface {
	// IsAuthorized resolves whether a principal may manage a guild's ships,
	// or one ship when ShipID is set. Lookup failures resolve to false.
	IsAuthorized(ctx context.Context, q AuthQuery) bool

	// Explain is IsAuthorized with the rule that matched.
	Explain(ctx context.Context, q AuthQuery) AuthDecision

	GrantGuildRole(ctx context.Context, guildID, roleID int64) error
	RevokeGuildRole(ctx context.Context, guildID, roleID int64) error
	GrantGuildUser(ctx context.Context, guildID, userID int64) error
	RevokeGuildUser(ctx context.Context, guildID, userID int64) error

	// GrantShipUser grants one user rights on one ship; the grantor is the
	// acting principal.
	GrantShipUser(ctx context.Context, shipID, userID int64) error
	RevokeShipUser(ctx context.Context, shipID, userID int64) error

	// ListGuildGrants retrieves a guild's authorized roles and users.
	ListGuildGrants(ctx context.Context, guildID int64) (*GuildGrants, error)

	// ListShipGrants retrieves a ship's user grants.
	ListShipGrants(ctx context.Context, shipID int64) ([]*ShipGrant, error)

	// SeedGrants applies startup grants idempotently.
	SeedGrants(ctx context.Context, seed []GuildGrants) error

	// InvalidateGuild drops cached grants of a guild.
	InvalidateGuild(guildID int64)

	// InvalidateShip drops cached grants and presence of a ship.
	InvalidateShip(shipID int64)
}

// AuthQuery identifies who asks and for what.
type AuthQuery struct {
	GuildID int64
	UserID  int64
	RoleIDs []int64
	ShipID  *int64
}

// AuthDecision is the outcome of an authorization check.
type AuthDecision struct {
	Allowed bool
	// Basis is "system", "ship_grant", "guild_user", "guild_role" or empty.
	Basis   string
	GuildID int64
}

// GuildGrants lists a guild's guild-level grants.
type GuildGrants struct {
	GuildID int64
	RoleIDs []int64
	UserIDs []int64
}

// ShipGrant is a per-ship user grant.
type ShipGrant struct {
	ShipID    int64
	UserID    int64
	GrantedBy int64
}
