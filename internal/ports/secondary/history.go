package secondary

import "context"

// HistoryKind selects one of the append-only audit tables.
type HistoryKind string

const (
	HistoryUpdate HistoryKind = "update"
	HistoryKill   HistoryKind = "kill"
	HistoryOp     HistoryKind = "op"
	HistorySupply HistoryKind = "supply"
)

// HistoryRepository defines the secondary port for the audit trail.
// It only appends and reads; the storage rejects updates and deletes.
type HistoryRepository interface {
	// AppendUpdate records one field change.
	AppendUpdate(ctx context.Context, entry *HistoryRecord) error

	// AppendKill records a kill report.
	AppendKill(ctx context.Context, entry *HistoryRecord) error

	// AppendOp records an op debrief.
	AppendOp(ctx context.Context, entry *HistoryRecord) error

	// AppendSupplyChange records a supply adjustment.
	AppendSupplyChange(ctx context.Context, entry *HistoryRecord) error

	// List retrieves one kind of history for a ship, newest first.
	List(ctx context.Context, filters HistoryFilters) ([]*HistoryRecord, error)
}

// HistoryRecord is one audit row. Which fields are meaningful depends on Kind.
type HistoryRecord struct {
	ID     int64
	Kind   HistoryKind
	ShipID int64
	UserID int64 // 0 = unknown actor

	// update
	Field    string
	OldValue string
	NewValue string
	OpID     string

	// kill, op
	Text string

	// supply
	Resource      string
	Delta         int64
	QuantityAfter int64

	CreatedAt int64
}

// HistoryFilters selects a page of history.
// Rows strictly older than (BeforeCreatedAt, BeforeID) are returned when
// BeforeID is set.
type HistoryFilters struct {
	ShipID          int64
	Kind            HistoryKind
	Limit           int
	BeforeCreatedAt int64
	BeforeID        int64
}
