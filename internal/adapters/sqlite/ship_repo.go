package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/ports/secondary"
)

// ShipRepository implements secondary.ShipRepository with SQLite.
type ShipRepository struct {
	db *sql.DB
}

// NewShipRepository creates a new SQLite ship repository.
func NewShipRepository(db *sql.DB) *ShipRepository {
	return &ShipRepository{db: db}
}

// settableColumns are the columns SetField may write. Column names are
// interpolated into SQL, so nothing outside this set is accepted.
var settableColumns = map[string]bool{
	"type": true, "name": true, "status": true, "damage": true,
	"location": true, "home_port": true, "notes": true, "keys": true,
	"image_url": true, "regiment": true, "share_code": true,
	"squad_lock_until": true, "link_root_id": true,
}

const shipColumns = `id, guild_id, war_id, type, name, status, damage, location, home_port, notes,
	squad_lock_until, keys, image_url, regiment, share_code, link_root_id, created_at, updated_at`

// Create persists a new ship and fills in its id.
func (r *ShipRepository) Create(ctx context.Context, ship *secondary.ShipRecord) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO ships (guild_id, war_id, type, name, status, damage, location, home_port, notes,
			squad_lock_until, keys, image_url, regiment, share_code, link_root_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ship.GuildID, ship.WarID, nullString(ship.Type), ship.Name, ship.Status, ship.Damage,
		nullString(ship.Location), nullString(ship.HomePort), nullString(ship.Notes),
		ship.SquadLockUntil, nullString(ship.Keys), nullString(ship.ImageURL), nullString(ship.Regiment),
		nullString(ship.ShareCode), nullInt(ship.LinkRootID), ship.CreatedAt, ship.UpdatedAt,
	)
	if err != nil {
		if apperr.IsCode(classify(err, "create ship"), apperr.DuplicateName) {
			return apperr.Wrap(apperr.DuplicateName, err,
				"ship %q already exists in guild %d war %d", ship.Name, ship.GuildID, ship.WarID)
		}
		return classify(err, "create ship")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return classify(err, "read ship id")
	}
	ship.ID = id
	return nil
}

// GetByID retrieves a ship by its id.
func (r *ShipRepository) GetByID(ctx context.Context, id int64) (*secondary.ShipRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+shipColumns+" FROM ships WHERE id = ?", id)
	ship, err := scanShip(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "ship %d not found", id)
	}
	if err != nil {
		return nil, classify(err, "get ship")
	}
	return ship, nil
}

// GetByName retrieves a ship by its scoped name.
func (r *ShipRepository) GetByName(ctx context.Context, guildID, warID int64, name string) (*secondary.ShipRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+shipColumns+" FROM ships WHERE guild_id = ? AND war_id = ? AND name = ?",
		guildID, warID, name)
	ship, err := scanShip(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "ship %q not found in guild %d war %d", name, guildID, warID)
	}
	if err != nil {
		return nil, classify(err, "get ship by name")
	}
	return ship, nil
}

// GetByShareCode retrieves the ship holding a share code.
func (r *ShipRepository) GetByShareCode(ctx context.Context, code string) (*secondary.ShipRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+shipColumns+" FROM ships WHERE share_code = ?", code)
	ship, err := scanShip(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "share code %q is not valid", code)
	}
	if err != nil {
		return nil, classify(err, "get ship by share code")
	}
	return ship, nil
}

// NameExists reports whether a name is taken in (guild, war).
func (r *ShipRepository) NameExists(ctx context.Context, guildID, warID int64, name string) (bool, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ships WHERE guild_id = ? AND war_id = ? AND name = ?",
		guildID, warID, name,
	).Scan(&n)
	if err != nil {
		return false, classify(err, "check ship name")
	}
	return n > 0, nil
}

// List retrieves ships matching the given filters, ordered by name.
func (r *ShipRepository) List(ctx context.Context, filters secondary.ShipFilters) ([]*secondary.ShipRecord, error) {
	query := "SELECT " + shipColumns + " FROM ships WHERE 1=1"
	var args []any

	if filters.GuildID != 0 {
		query += " AND guild_id = ?"
		args = append(args, filters.GuildID)
	}
	if filters.WarID != 0 {
		query += " AND war_id = ?"
		args = append(args, filters.WarID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.NameContains != "" {
		query += " AND name LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(filters.NameContains)+"%")
	}
	if filters.ExcludeDead {
		query += " AND status != 'Dead'"
	}

	query += " ORDER BY name COLLATE NOCASE ASC, id ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "list ships")
	}
	defer rows.Close()
	return scanShips(rows)
}

// LinkGroup retrieves the root ship and every ship linked to it, root first.
func (r *ShipRepository) LinkGroup(ctx context.Context, rootID int64) ([]*secondary.ShipRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+shipColumns+" FROM ships WHERE id = ? OR link_root_id = ? ORDER BY (id != ?), id",
		rootID, rootID, rootID)
	if err != nil {
		return nil, classify(err, "list link group")
	}
	defer rows.Close()

	ships, err := scanShips(rows)
	if err != nil {
		return nil, err
	}
	if len(ships) == 0 {
		return nil, apperr.New(apperr.NotFound, "ship %d not found", rootID)
	}
	return ships, nil
}

// SetField stores one column and bumps updated_at past its previous value.
func (r *ShipRepository) SetField(ctx context.Context, id int64, field string, value any, at int64) (int64, error) {
	if !settableColumns[field] {
		return 0, apperr.New(apperr.Validation, "unknown or read-only field %q", field)
	}

	q := conn(ctx, r.db)
	result, err := q.ExecContext(ctx,
		"UPDATE ships SET "+field+" = ?, updated_at = MAX(?, updated_at + 1) WHERE id = ?",
		value, at, id,
	)
	if err != nil {
		return 0, classify(err, fmt.Sprintf("update ship %d %s", id, field))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return 0, apperr.New(apperr.NotFound, "ship %d not found", id)
	}

	var updatedAt int64
	if err := q.QueryRowContext(ctx, "SELECT updated_at FROM ships WHERE id = ?", id).Scan(&updatedAt); err != nil {
		return 0, classify(err, "read ship updated_at")
	}
	return updatedAt, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShip(row rowScanner) (*secondary.ShipRecord, error) {
	var (
		typ, location, homePort, notes sql.NullString
		keys, imageURL, regiment, code sql.NullString
		linkRoot                       sql.NullInt64
	)
	s := &secondary.ShipRecord{}
	err := row.Scan(&s.ID, &s.GuildID, &s.WarID, &typ, &s.Name, &s.Status, &s.Damage,
		&location, &homePort, &notes, &s.SquadLockUntil, &keys, &imageURL, &regiment, &code,
		&linkRoot, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Type = typ.String
	s.Location = location.String
	s.HomePort = homePort.String
	s.Notes = notes.String
	s.Keys = keys.String
	s.ImageURL = imageURL.String
	s.Regiment = regiment.String
	s.ShareCode = code.String
	s.LinkRootID = linkRoot.Int64
	return s, nil
}

func scanShips(rows *sql.Rows) ([]*secondary.ShipRecord, error) {
	var ships []*secondary.ShipRecord
	for rows.Next() {
		s, err := scanShip(rows)
		if err != nil {
			return nil, classify(err, "scan ship")
		}
		ships = append(ships, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list ships")
	}
	return ships, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ secondary.ShipRepository = (*ShipRepository)(nil)
