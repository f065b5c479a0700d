package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/shiptracker/internal/apperr"
	"github.com/example/shiptracker/internal/ports/secondary"
)

// WarRepository implements secondary.WarRepository with SQLite.
type WarRepository struct {
	db *sql.DB
}

// NewWarRepository creates a new SQLite war repository.
func NewWarRepository(db *sql.DB) *WarRepository {
	return &WarRepository{db: db}
}

// Create persists a new war.
func (r *WarRepository) Create(ctx context.Context, war *secondary.WarRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO wars (id, started_at) VALUES (?, ?)",
		war.ID, war.StartedAt,
	)
	if err != nil {
		return classify(err, "create war")
	}
	return nil
}

// GetByID retrieves a war by its id.
func (r *WarRepository) GetByID(ctx context.Context, id int64) (*secondary.WarRecord, error) {
	var endedAt sql.NullInt64
	record := &secondary.WarRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, started_at, ended_at FROM wars WHERE id = ?", id,
	).Scan(&record.ID, &record.StartedAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "war %d not found", id)
	}
	if err != nil {
		return nil, classify(err, "get war")
	}
	record.EndedAt = endedAt.Int64
	return record, nil
}

// List retrieves all wars, newest first.
func (r *WarRepository) List(ctx context.Context) ([]*secondary.WarRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT id, started_at, ended_at FROM wars ORDER BY id DESC",
	)
	if err != nil {
		return nil, classify(err, "list wars")
	}
	defer rows.Close()

	var wars []*secondary.WarRecord
	for rows.Next() {
		var endedAt sql.NullInt64
		record := &secondary.WarRecord{}
		if err := rows.Scan(&record.ID, &record.StartedAt, &endedAt); err != nil {
			return nil, classify(err, "scan war")
		}
		record.EndedAt = endedAt.Int64
		wars = append(wars, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list wars")
	}
	return wars, nil
}

// End sets ended_at on an open war.
func (r *WarRepository) End(ctx context.Context, id int64, at int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE wars SET ended_at = ? WHERE id = ?", at, id,
	)
	if err != nil {
		return classify(err, fmt.Sprintf("end war %d", id))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "war %d not found", id)
	}
	return nil
}

var _ secondary.WarRepository = (*WarRepository)(nil)
