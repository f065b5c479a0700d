package db

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository tests
// open databases through Open, which applies this schema, so a column
// referenced by repository code but missing here fails with "no such column".
//
// # Archive-only enforcement
//
// Wars, ships and every audit table reject DELETE at the storage boundary.
// Ships reject guild/war changes and audit rows reject UPDATE. The services
// check the same rules before issuing statements; the triggers are the last
// line. Trigger messages start with a stable prefix ("archive-only:",
// "append-only:", "immutable scope:") that the sqlite adapter classifies.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Bump the version count marked applied for fresh installs (len(migrations))
//
// Timestamps are INTEGER unix microseconds except squad_lock_until, which is
// unix seconds (0 = not locked).
const SchemaSQL = `
-- Wars (campaign scopes, global numeric id)
CREATE TABLE IF NOT EXISTS wars (
	id INTEGER PRIMARY KEY CHECK(id > 0),
	started_at INTEGER NOT NULL,
	ended_at INTEGER
);

CREATE TRIGGER IF NOT EXISTS wars_no_delete
BEFORE DELETE ON wars
BEGIN
	SELECT RAISE(ABORT, 'archive-only: wars cannot be deleted');
END;

CREATE TRIGGER IF NOT EXISTS wars_fixed_start
BEFORE UPDATE OF id, started_at ON wars
WHEN NEW.id != OLD.id OR NEW.started_at != OLD.started_at
BEGIN
	SELECT RAISE(ABORT, 'immutable scope: war id and start cannot change');
END;

CREATE TRIGGER IF NOT EXISTS wars_end_once
BEFORE UPDATE OF ended_at ON wars
WHEN OLD.ended_at IS NOT NULL
BEGIN
	SELECT RAISE(ABORT, 'archive-only: war already ended');
END;

-- Ships (tracked entities, scoped to guild + war)
CREATE TABLE IF NOT EXISTS ships (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guild_id INTEGER NOT NULL,
	war_id INTEGER NOT NULL,
	type TEXT,
	name TEXT NOT NULL CHECK(length(name) BETWEEN 1 AND 64),
	status TEXT NOT NULL CHECK(status IN ('Parked', 'Deployed', 'Repairing', 'Dead')) DEFAULT 'Parked',
	damage INTEGER NOT NULL CHECK(damage BETWEEN 0 AND 5) DEFAULT 0,
	location TEXT,
	home_port TEXT,
	notes TEXT,
	squad_lock_until INTEGER NOT NULL CHECK(squad_lock_until >= 0) DEFAULT 0,
	keys TEXT,
	image_url TEXT,
	regiment TEXT,
	share_code TEXT UNIQUE,
	link_root_id INTEGER,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	FOREIGN KEY (war_id) REFERENCES wars(id),
	FOREIGN KEY (link_root_id) REFERENCES ships(id),
	UNIQUE(guild_id, war_id, name)
);

CREATE INDEX IF NOT EXISTS idx_ships_scope ON ships(guild_id, war_id);
CREATE INDEX IF NOT EXISTS idx_ships_link_root ON ships(link_root_id);

CREATE TRIGGER IF NOT EXISTS ships_no_delete
BEFORE DELETE ON ships
BEGIN
	SELECT RAISE(ABORT, 'archive-only: ships cannot be deleted');
END;

CREATE TRIGGER IF NOT EXISTS ships_fixed_scope
BEFORE UPDATE OF guild_id, war_id ON ships
WHEN NEW.guild_id != OLD.guild_id OR NEW.war_id != OLD.war_id
BEGIN
	SELECT RAISE(ABORT, 'immutable scope: ship guild and war cannot change');
END;

-- Supplies (per-ship named resource quantities)
CREATE TABLE IF NOT EXISTS ship_supplies (
	ship_id INTEGER NOT NULL,
	resource TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK(quantity >= 0),
	updated_at INTEGER NOT NULL,
	FOREIGN KEY (ship_id) REFERENCES ships(id),
	UNIQUE(ship_id, resource)
);

-- Audit: field updates
CREATE TABLE IF NOT EXISTS ship_updates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ship_id INTEGER NOT NULL,
	user_id INTEGER,
	field TEXT NOT NULL,
	old_value TEXT,
	new_value TEXT,
	op_id TEXT,
	created_at INTEGER NOT NULL,
	FOREIGN KEY (ship_id) REFERENCES ships(id)
);

CREATE INDEX IF NOT EXISTS idx_ship_updates_ship ON ship_updates(ship_id, created_at);

-- Audit: kill reports
CREATE TABLE IF NOT EXISTS ship_kills (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ship_id INTEGER NOT NULL,
	user_id INTEGER,
	kills_raw TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY (ship_id) REFERENCES ships(id)
);

CREATE INDEX IF NOT EXISTS idx_ship_kills_ship ON ship_kills(ship_id, created_at);

-- Audit: op debriefs
CREATE TABLE IF NOT EXISTS ship_ops (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ship_id INTEGER NOT NULL,
	user_id INTEGER,
	debrief TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY (ship_id) REFERENCES ships(id)
);

CREATE INDEX IF NOT EXISTS idx_ship_ops_ship ON ship_ops(ship_id, created_at);

-- Audit: supply adjustments
CREATE TABLE IF NOT EXISTS ship_supply_changes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ship_id INTEGER NOT NULL,
	user_id INTEGER,
	resource TEXT NOT NULL,
	delta INTEGER NOT NULL,
	quantity_after INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY (ship_id) REFERENCES ships(id)
);

CREATE INDEX IF NOT EXISTS idx_ship_supply_changes_ship ON ship_supply_changes(ship_id, created_at);

CREATE TRIGGER IF NOT EXISTS ship_updates_append_only_u BEFORE UPDATE ON ship_updates
BEGIN SELECT RAISE(ABORT, 'append-only: ship_updates rows are immutable'); END;
CREATE TRIGGER IF NOT EXISTS ship_updates_append_only_d BEFORE DELETE ON ship_updates
BEGIN SELECT RAISE(ABORT, 'append-only: ship_updates rows are immutable'); END;
CREATE TRIGGER IF NOT EXISTS ship_kills_append_only_u BEFORE UPDATE ON ship_kills
BEGIN SELECT RAISE(ABORT, 'append-only: ship_kills rows are immutable'); END;
CREATE TRIGGER IF NOT EXISTS ship_kills_append_only_d BEFORE DELETE ON ship_kills
BEGIN SELECT RAISE(ABORT, 'append-only: ship_kills rows are immutable'); END;
CREATE TRIGGER IF NOT EXISTS ship_ops_append_only_u BEFORE UPDATE ON ship_ops
BEGIN SELECT RAISE(ABORT, 'append-only: ship_ops rows are immutable'); END;
CREATE TRIGGER IF NOT EXISTS ship_ops_append_only_d BEFORE DELETE ON ship_ops
BEGIN SELECT RAISE(ABORT, 'append-only: ship_ops rows are immutable'); END;
CREATE TRIGGER IF NOT EXISTS ship_supply_changes_append_only_u BEFORE UPDATE ON ship_supply_changes
BEGIN SELECT RAISE(ABORT, 'append-only: ship_supply_changes rows are immutable'); END;
CREATE TRIGGER IF NOT EXISTS ship_supply_changes_append_only_d BEFORE DELETE ON ship_supply_changes
BEGIN SELECT RAISE(ABORT, 'append-only: ship_supply_changes rows are immutable'); END;

-- Instances (external rendered views of a ship)
CREATE TABLE IF NOT EXISTS ship_instances (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ship_id INTEGER NOT NULL,
	guild_id INTEGER NOT NULL,
	channel_id INTEGER NOT NULL,
	message_id INTEGER NOT NULL,
	is_original INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	FOREIGN KEY (ship_id) REFERENCES ships(id),
	UNIQUE(guild_id, channel_id, message_id)
);

CREATE INDEX IF NOT EXISTS idx_ship_instances_ship ON ship_instances(ship_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_ship_instances_one_original
	ON ship_instances(ship_id) WHERE is_original = 1;

-- Authorization grants
CREATE TABLE IF NOT EXISTS guild_auth_roles (
	guild_id INTEGER NOT NULL,
	role_id INTEGER NOT NULL,
	PRIMARY KEY (guild_id, role_id)
);

CREATE TABLE IF NOT EXISTS guild_auth_users (
	guild_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	PRIMARY KEY (guild_id, user_id)
);

CREATE TABLE IF NOT EXISTS ship_auth_users (
	ship_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	granted_by INTEGER,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (ship_id, user_id),
	FOREIGN KEY (ship_id) REFERENCES ships(id)
);
`

// GetSchemaSQL returns the authoritative schema SQL.
func GetSchemaSQL() string {
	return SchemaSQL
}
