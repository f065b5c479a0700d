package primary

import (
	"context"
	"time"
)

// HistoryService defines the primary port for the append-only audit trail.
// There are no update or delete operations.
type HistoryService interface {
	// RecordKill appends a kill report.
	RecordKill(ctx context.Context, shipID int64, text string) (*HistoryEntry, error)

	// RecordOp appends an op debrief.
	RecordOp(ctx context.Context, shipID int64, text string) (*HistoryEntry, error)

	// LogAction appends a kill report and/or a debrief; blank parts are skipped.
	LogAction(ctx context.Context, req LogActionRequest) (*LogActionResult, error)

	// ListHistory retrieves a page of one kind of history, newest first.
	ListHistory(ctx context.Context, q HistoryQuery) (*HistoryPage, error)
}

// LogActionRequest contains an after-action report.
type LogActionRequest struct {
	ShipID  int64
	Kills   string
	Debrief string
}

// LogActionResult lists the rows LogAction appended.
type LogActionResult struct {
	Kill *HistoryEntry
	Op   *HistoryEntry
}

// HistoryQuery selects a page. Kind is update, kill, op or supply.
type HistoryQuery struct {
	ShipID int64
	Kind   string
	Limit  int
	Cursor string
}

// HistoryPage is one page of history. Next is empty on the last page.
type HistoryPage struct {
	Entries []*HistoryEntry
	Next    string
}

// HistoryEntry is one audit row at the port boundary.
type HistoryEntry struct {
	ID            int64
	Kind          string
	ShipID        int64
	UserID        int64
	Field         string
	OldValue      string
	NewValue      string
	OpID          string
	Text          string
	Resource      string
	Delta         int64
	QuantityAfter int64
	CreatedAt     time.Time
}
