package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/shiptracker/internal/ports/secondary"
)

// SupplyRepository implements secondary.SupplyRepository with SQLite.
type SupplyRepository struct {
	db *sql.DB
}

// NewSupplyRepository creates a new SQLite supply repository.
func NewSupplyRepository(db *sql.DB) *SupplyRepository {
	return &SupplyRepository{db: db}
}

// Get retrieves one supply row, or nil if there is none.
func (r *SupplyRepository) Get(ctx context.Context, shipID int64, resource string) (*secondary.SupplyRecord, error) {
	record := &secondary.SupplyRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT ship_id, resource, quantity, updated_at FROM ship_supplies WHERE ship_id = ? AND resource = ?",
		shipID, resource,
	).Scan(&record.ShipID, &record.Resource, &record.Quantity, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "get supply")
	}
	return record, nil
}

// Upsert stores an absolute quantity.
func (r *SupplyRepository) Upsert(ctx context.Context, supply *secondary.SupplyRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO ship_supplies (ship_id, resource, quantity, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(ship_id, resource) DO UPDATE SET quantity = excluded.quantity, updated_at = excluded.updated_at`,
		supply.ShipID, supply.Resource, supply.Quantity, supply.UpdatedAt,
	)
	if err != nil {
		return classify(err, "store supply")
	}
	return nil
}

// List retrieves a ship's supplies ordered by resource.
func (r *SupplyRepository) List(ctx context.Context, shipID int64) ([]*secondary.SupplyRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT ship_id, resource, quantity, updated_at FROM ship_supplies WHERE ship_id = ? ORDER BY resource",
		shipID,
	)
	if err != nil {
		return nil, classify(err, "list supplies")
	}
	defer rows.Close()

	var supplies []*secondary.SupplyRecord
	for rows.Next() {
		record := &secondary.SupplyRecord{}
		if err := rows.Scan(&record.ShipID, &record.Resource, &record.Quantity, &record.UpdatedAt); err != nil {
			return nil, classify(err, "scan supply")
		}
		supplies = append(supplies, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list supplies")
	}
	return supplies, nil
}

var _ secondary.SupplyRepository = (*SupplyRepository)(nil)
