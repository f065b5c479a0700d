package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/shiptracker/internal/ports/secondary"
)

// InstanceRepository implements secondary.InstanceRepository with SQLite.
type InstanceRepository struct {
	db *sql.DB
}

// NewInstanceRepository creates a new SQLite instance repository.
func NewInstanceRepository(db *sql.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

// Create persists a new instance and fills in its id.
func (r *InstanceRepository) Create(ctx context.Context, instance *secondary.InstanceRecord) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO ship_instances (ship_id, guild_id, channel_id, message_id, is_original, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		instance.ShipID, instance.GuildID, instance.ChannelID, instance.MessageID, instance.IsOriginal, instance.CreatedAt,
	)
	if err != nil {
		return classify(err, "register instance")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return classify(err, "read instance id")
	}
	instance.ID = id
	return nil
}

// GetByTriple retrieves the instance at (guild, channel, message), or nil.
func (r *InstanceRepository) GetByTriple(ctx context.Context, guildID, channelID, messageID int64) (*secondary.InstanceRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, ship_id, guild_id, channel_id, message_id, is_original, created_at
		FROM ship_instances WHERE guild_id = ? AND channel_id = ? AND message_id = ?`,
		guildID, channelID, messageID)
	record, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "get instance")
	}
	return record, nil
}

// HasOriginal reports whether the ship has a canonical instance.
func (r *InstanceRepository) HasOriginal(ctx context.Context, shipID int64) (bool, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ship_instances WHERE ship_id = ? AND is_original = 1", shipID,
	).Scan(&n)
	if err != nil {
		return false, classify(err, "check original instance")
	}
	return n > 0, nil
}

// ListByShips retrieves the instances of the given ships, oldest first.
func (r *InstanceRepository) ListByShips(ctx context.Context, shipIDs []int64) ([]*secondary.InstanceRecord, error) {
	if len(shipIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(shipIDs)), ",")
	args := make([]any, len(shipIDs))
	for i, id := range shipIDs {
		args[i] = id
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, ship_id, guild_id, channel_id, message_id, is_original, created_at
		FROM ship_instances WHERE ship_id IN (`+placeholders+`) ORDER BY created_at, id`,
		args...)
	if err != nil {
		return nil, classify(err, "list instances")
	}
	defer rows.Close()

	var instances []*secondary.InstanceRecord
	for rows.Next() {
		record, err := scanInstance(rows)
		if err != nil {
			return nil, classify(err, "scan instance")
		}
		instances = append(instances, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list instances")
	}
	return instances, nil
}

// GuildsForShip returns the distinct guilds holding an instance of the ship.
func (r *InstanceRepository) GuildsForShip(ctx context.Context, shipID int64) ([]int64, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT DISTINCT guild_id FROM ship_instances WHERE ship_id = ? ORDER BY guild_id", shipID)
	if err != nil {
		return nil, classify(err, "list instance guilds")
	}
	defer rows.Close()
	return scanIDs(rows, "instance guild")
}

func scanInstance(row rowScanner) (*secondary.InstanceRecord, error) {
	record := &secondary.InstanceRecord{}
	err := row.Scan(&record.ID, &record.ShipID, &record.GuildID, &record.ChannelID,
		&record.MessageID, &record.IsOriginal, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func scanIDs(rows *sql.Rows, what string) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, classify(err, "scan "+what)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list "+what)
	}
	return ids, nil
}

var _ secondary.InstanceRepository = (*InstanceRepository)(nil)
