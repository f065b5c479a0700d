package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/shiptracker/internal/ports/secondary"
)

// GrantRepository implements secondary.GrantRepository with SQLite.
// Grants, unlike ships and audit rows, may be revoked.
type GrantRepository struct {
	db *sql.DB
}

// NewGrantRepository creates a new SQLite grant repository.
func NewGrantRepository(db *sql.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// AddGuildRole authorizes a role in a guild.
func (r *GrantRepository) AddGuildRole(ctx context.Context, guildID, roleID int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT OR IGNORE INTO guild_auth_roles (guild_id, role_id) VALUES (?, ?)", guildID, roleID)
	return classify(err, "grant guild role")
}

// RemoveGuildRole revokes a guild role.
func (r *GrantRepository) RemoveGuildRole(ctx context.Context, guildID, roleID int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM guild_auth_roles WHERE guild_id = ? AND role_id = ?", guildID, roleID)
	return classify(err, "revoke guild role")
}

// ListGuildRoles retrieves a guild's authorized roles.
func (r *GrantRepository) ListGuildRoles(ctx context.Context, guildID int64) ([]int64, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT role_id FROM guild_auth_roles WHERE guild_id = ? ORDER BY role_id", guildID)
	if err != nil {
		return nil, classify(err, "list guild roles")
	}
	defer rows.Close()
	return scanIDs(rows, "guild role")
}

// AddGuildUser authorizes a user in a guild.
func (r *GrantRepository) AddGuildUser(ctx context.Context, guildID, userID int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT OR IGNORE INTO guild_auth_users (guild_id, user_id) VALUES (?, ?)", guildID, userID)
	return classify(err, "grant guild user")
}

// RemoveGuildUser revokes a guild user.
func (r *GrantRepository) RemoveGuildUser(ctx context.Context, guildID, userID int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM guild_auth_users WHERE guild_id = ? AND user_id = ?", guildID, userID)
	return classify(err, "revoke guild user")
}

// ListGuildUsers retrieves a guild's authorized users.
func (r *GrantRepository) ListGuildUsers(ctx context.Context, guildID int64) ([]int64, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT user_id FROM guild_auth_users WHERE guild_id = ? ORDER BY user_id", guildID)
	if err != nil {
		return nil, classify(err, "list guild users")
	}
	defer rows.Close()
	return scanIDs(rows, "guild user")
}

// AddShipUser grants a user rights on one ship. Re-granting keeps the
// original grantor.
func (r *GrantRepository) AddShipUser(ctx context.Context, grant *secondary.ShipGrantRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT OR IGNORE INTO ship_auth_users (ship_id, user_id, granted_by, created_at) VALUES (?, ?, ?, ?)",
		grant.ShipID, grant.UserID, nullInt(grant.GrantedBy), grant.CreatedAt)
	return classify(err, "grant ship user")
}

// RemoveShipUser revokes a ship grant.
func (r *GrantRepository) RemoveShipUser(ctx context.Context, shipID, userID int64) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM ship_auth_users WHERE ship_id = ? AND user_id = ?", shipID, userID)
	return classify(err, "revoke ship user")
}

// ListShipUsers retrieves a ship's user grants.
func (r *GrantRepository) ListShipUsers(ctx context.Context, shipID int64) ([]*secondary.ShipGrantRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT ship_id, user_id, granted_by, created_at FROM ship_auth_users WHERE ship_id = ? ORDER BY user_id",
		shipID)
	if err != nil {
		return nil, classify(err, "list ship grants")
	}
	defer rows.Close()

	var grants []*secondary.ShipGrantRecord
	for rows.Next() {
		var grantedBy sql.NullInt64
		g := &secondary.ShipGrantRecord{}
		if err := rows.Scan(&g.ShipID, &g.UserID, &grantedBy, &g.CreatedAt); err != nil {
			return nil, classify(err, "scan ship grant")
		}
		g.GrantedBy = grantedBy.Int64
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list ship grants")
	}
	return grants, nil
}

var _ secondary.GrantRepository = (*GrantRepository)(nil)
