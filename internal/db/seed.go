package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures: one war,
// a handful of ships across two guilds, grants and views. Intended for a
// freshly created database.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UnixMicro()

	if _, err := database.Exec("INSERT INTO wars (id, started_at) VALUES (?, ?)", 1, now); err != nil {
		return fmt.Errorf("seed wars: %w", err)
	}

	ships := []struct {
		id      int64
		guildID int64
		name    string
		typ     string
		status  string
		damage  int
	}{
		{1, 7, "Alpha", "Frigate", "Parked", 0},
		{2, 7, "Bravo", "Destroyer", "Deployed", 2},
		{3, 7, "Charlie", "Gunboat", "Repairing", 4},
		{4, 8, "Delta", "Frigate", "Parked", 1},
	}
	for _, s := range ships {
		if _, err := database.Exec(
			"INSERT INTO ships (id, guild_id, war_id, name, type, status, damage, created_at, updated_at) VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?)",
			s.id, s.guildID, s.name, s.typ, s.status, s.damage, now, now,
		); err != nil {
			return fmt.Errorf("seed ships: %w", err)
		}
	}

	if _, err := database.Exec("INSERT INTO ship_supplies (ship_id, resource, quantity, updated_at) VALUES (1, 'shells', 40, ?), (1, 'fuel', 100, ?)", now, now); err != nil {
		return fmt.Errorf("seed supplies: %w", err)
	}

	if _, err := database.Exec("INSERT INTO guild_auth_roles (guild_id, role_id) VALUES (7, 700), (8, 800)"); err != nil {
		return fmt.Errorf("seed guild roles: %w", err)
	}
	if _, err := database.Exec("INSERT INTO guild_auth_users (guild_id, user_id) VALUES (7, 1001)"); err != nil {
		return fmt.Errorf("seed guild users: %w", err)
	}
	if _, err := database.Exec("INSERT INTO ship_auth_users (ship_id, user_id, granted_by, created_at) VALUES (2, 2002, 1001, ?)", now); err != nil {
		return fmt.Errorf("seed ship grants: %w", err)
	}

	instances := []struct {
		shipID, guildID, channelID, messageID int64
		original                              bool
	}{
		{1, 7, 70, 7001, true},
		{1, 8, 80, 8001, false},
		{2, 7, 70, 7002, true},
	}
	for _, in := range instances {
		if _, err := database.Exec(
			"INSERT INTO ship_instances (ship_id, guild_id, channel_id, message_id, is_original, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			in.shipID, in.guildID, in.channelID, in.messageID, in.original, now,
		); err != nil {
			return fmt.Errorf("seed instances: %w", err)
		}
	}

	return nil
}
