package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/shiptracker/internal/ports/primary"
)

// WarAdapter translates CLI war operations to WarService calls.
type WarAdapter struct {
	service primary.WarService
	out     io.Writer
}

// NewWarAdapter creates a new WarAdapter with the given service.
func NewWarAdapter(service primary.WarService, out io.Writer) *WarAdapter {
	return &WarAdapter{
		service: service,
		out:     out,
	}
}

// Create starts a war.
func (a *WarAdapter) Create(ctx context.Context, warID int64) (*primary.War, error) {
	w, err := a.service.CreateWar(ctx, warID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Started war %d\n", w.ID)
	return w, nil
}

// End closes a war.
func (a *WarAdapter) End(ctx context.Context, warID int64) (*primary.War, error) {
	w, err := a.service.EndWar(ctx, warID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Ended war %d\n", w.ID)
	return w, nil
}

// List lists wars, newest first.
func (a *WarAdapter) List(ctx context.Context) ([]*primary.War, error) {
	wars, err := a.service.ListWars(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wars: %w", err)
	}

	if len(wars) == 0 {
		fmt.Fprintln(a.out, "No wars found.")
		return wars, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tSTARTED\tENDED")
	fmt.Fprintln(w, "--\t-----\t-------\t-----")
	for _, war := range wars {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", war.ID, warState(war), war.StartedAt.Format(time.DateTime), endedLabel(war))
	}
	w.Flush()
	return wars, nil
}

// Show displays one war.
func (a *WarAdapter) Show(ctx context.Context, warID int64) (*primary.War, error) {
	war, err := a.service.GetWar(ctx, warID)
	if err != nil {
		return nil, fmt.Errorf("failed to get war: %w", err)
	}
	fmt.Fprintf(a.out, "War %d: %s\n", war.ID, warState(war))
	fmt.Fprintf(a.out, "Started: %s\n", war.StartedAt.Format(time.DateTime))
	fmt.Fprintf(a.out, "Ended:   %s\n", endedLabel(war))
	return war, nil
}

func warState(w *primary.War) string {
	if w.Ended() {
		return color.New(color.FgHiBlack).Sprint("ended")
	}
	return color.New(color.FgGreen).Sprint("open")
}

func endedLabel(w *primary.War) string {
	if !w.Ended() {
		return "-"
	}
	return w.EndedAt.Format(time.DateTime)
}
