package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/example/shiptracker/internal/ports/primary"
)

// HistoryAdapter translates CLI history operations to HistoryService calls.
type HistoryAdapter struct {
	service primary.HistoryService
	out     io.Writer
}

// NewHistoryAdapter creates a new HistoryAdapter with the given service.
func NewHistoryAdapter(service primary.HistoryService, out io.Writer) *HistoryAdapter {
	return &HistoryAdapter{
		service: service,
		out:     out,
	}
}

// Log appends an after-action report.
func (a *HistoryAdapter) Log(ctx context.Context, req primary.LogActionRequest) (*primary.LogActionResult, error) {
	res, err := a.service.LogAction(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.Kill != nil {
		fmt.Fprintf(a.out, "✓ Kill report #%d logged for ship %d\n", res.Kill.ID, res.Kill.ShipID)
	}
	if res.Op != nil {
		fmt.Fprintf(a.out, "✓ Debrief #%d logged for ship %d\n", res.Op.ID, res.Op.ShipID)
	}
	return res, nil
}

// List prints one page of history and the cursor for the next.
func (a *HistoryAdapter) List(ctx context.Context, q primary.HistoryQuery) (*primary.HistoryPage, error) {
	page, err := a.service.ListHistory(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	if len(page.Entries) == 0 {
		fmt.Fprintln(a.out, "No history found.")
		return page, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tUSER\tDETAIL")
	fmt.Fprintln(w, "--\t----\t----\t------")
	for _, e := range page.Entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Format(time.DateTime), userLabel(e.UserID), entryDetail(e))
	}
	w.Flush()

	if page.Next != "" {
		fmt.Fprintf(a.out, "\nMore: --cursor %s\n", page.Next)
	}
	return page, nil
}

func entryDetail(e *primary.HistoryEntry) string {
	switch e.Kind {
	case "update":
		return fmt.Sprintf("%s: %q → %q", e.Field, e.OldValue, e.NewValue)
	case "supply":
		return fmt.Sprintf("%s %+d → %d", e.Resource, e.Delta, e.QuantityAfter)
	}
	return e.Text
}

func userLabel(id int64) string {
	if id == 0 {
		return "system"
	}
	return fmt.Sprintf("%d", id)
}
