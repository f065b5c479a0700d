package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/ports/secondary"
)

// HistoryRepository implements secondary.HistoryRepository with SQLite.
// It only inserts and selects; triggers reject UPDATE and DELETE on every
// audit table.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new SQLite history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// AppendUpdate records one field change.
func (r *HistoryRepository) AppendUpdate(ctx context.Context, e *secondary.HistoryRecord) error {
	return r.insert(ctx, e, secondary.HistoryUpdate,
		`INSERT INTO ship_updates (ship_id, user_id, field, old_value, new_value, op_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ShipID, nullInt(e.UserID), e.Field, e.OldValue, e.NewValue, nullString(e.OpID), e.CreatedAt)
}

// AppendKill records a kill report.
func (r *HistoryRepository) AppendKill(ctx context.Context, e *secondary.HistoryRecord) error {
	return r.insert(ctx, e, secondary.HistoryKill,
		"INSERT INTO ship_kills (ship_id, user_id, kills_raw, created_at) VALUES (?, ?, ?, ?)",
		e.ShipID, nullInt(e.UserID), e.Text, e.CreatedAt)
}

// AppendOp records an op debrief.
func (r *HistoryRepository) AppendOp(ctx context.Context, e *secondary.HistoryRecord) error {
	return r.insert(ctx, e, secondary.HistoryOp,
		"INSERT INTO ship_ops (ship_id, user_id, debrief, created_at) VALUES (?, ?, ?, ?)",
		e.ShipID, nullInt(e.UserID), e.Text, e.CreatedAt)
}

// AppendSupplyChange records a supply adjustment.
func (r *HistoryRepository) AppendSupplyChange(ctx context.Context, e *secondary.HistoryRecord) error {
	return r.insert(ctx, e, secondary.HistorySupply,
		`INSERT INTO ship_supply_changes (ship_id, user_id, resource, delta, quantity_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ShipID, nullInt(e.UserID), e.Resource, e.Delta, e.QuantityAfter, e.CreatedAt)
}

func (r *HistoryRepository) insert(ctx context.Context, e *secondary.HistoryRecord, kind secondary.HistoryKind, query string, args ...any) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, fmt.Sprintf("append %s history", kind))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return classify(err, "read history id")
	}
	e.ID = id
	e.Kind = kind
	return nil
}

// historySelects project every audit table onto the HistoryRecord columns.
var historySelects = map[secondary.HistoryKind]string{
	secondary.HistoryUpdate: `SELECT id, ship_id, user_id, field, old_value, new_value, op_id, NULL, NULL, 0, 0, created_at FROM ship_updates`,
	secondary.HistoryKill:   `SELECT id, ship_id, user_id, NULL, NULL, NULL, NULL, kills_raw, NULL, 0, 0, created_at FROM ship_kills`,
	secondary.HistoryOp:     `SELECT id, ship_id, user_id, NULL, NULL, NULL, NULL, debrief, NULL, 0, 0, created_at FROM ship_ops`,
	secondary.HistorySupply: `SELECT id, ship_id, user_id, NULL, NULL, NULL, NULL, NULL, resource, delta, quantity_after, created_at FROM ship_supply_changes`,
}

// List retrieves one kind of history for a ship ordered by
// (created_at DESC, id DESC), starting strictly after the cursor.
func (r *HistoryRepository) List(ctx context.Context, filters secondary.HistoryFilters) ([]*secondary.HistoryRecord, error) {
	base, ok := historySelects[filters.Kind]
	if !ok {
		return nil, apperr.New(apperr.Validation, "unknown history kind %q", filters.Kind)
	}

	query := base + " WHERE ship_id = ?"
	args := []any{filters.ShipID}
	if filters.BeforeID != 0 {
		query += " AND (created_at < ? OR (created_at = ? AND id < ?))"
		args = append(args, filters.BeforeCreatedAt, filters.BeforeCreatedAt, filters.BeforeID)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "list history")
	}
	defer rows.Close()

	var entries []*secondary.HistoryRecord
	for rows.Next() {
		var (
			userID                               sql.NullInt64
			field, oldValue, newValue, opID, txt sql.NullString
			resource                             sql.NullString
		)
		e := &secondary.HistoryRecord{Kind: filters.Kind}
		if err := rows.Scan(&e.ID, &e.ShipID, &userID, &field, &oldValue, &newValue, &opID,
			&txt, &resource, &e.Delta, &e.QuantityAfter, &e.CreatedAt); err != nil {
			return nil, classify(err, "scan history")
		}
		e.UserID = userID.Int64
		e.Field = field.String
		e.OldValue = oldValue.String
		e.NewValue = newValue.String
		e.OpID = opID.String
		e.Text = txt.String
		e.Resource = resource.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list history")
	}
	return entries, nil
}

var _ secondary.HistoryRepository = (*HistoryRepository)(nil)
