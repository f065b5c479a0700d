package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/shiptracker/internal/ports/primary"
)

// InstanceAdapter translates CLI view-registry operations to InstanceService calls.
type InstanceAdapter struct {
	service primary.InstanceService
	out     io.Writer
}

// NewInstanceAdapter creates a new InstanceAdapter with the given service.
func NewInstanceAdapter(service primary.InstanceService, out io.Writer) *InstanceAdapter {
	return &InstanceAdapter{
		service: service,
		out:     out,
	}
}

// Register binds a message to a ship.
func (a *InstanceAdapter) Register(ctx context.Context, req primary.RegisterInstanceRequest) (*primary.RegisterInstanceResponse, error) {
	res, err := a.service.RegisterInstance(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.Created {
		fmt.Fprintf(a.out, "✓ Registered view %d of ship %d\n", res.Instance.ID, res.Instance.ShipID)
	} else {
		fmt.Fprintf(a.out, "View %d of ship %d already registered\n", res.Instance.ID, res.Instance.ShipID)
	}
	return res, nil
}

// List prints the views of one ship.
func (a *InstanceAdapter) List(ctx context.Context, shipID int64) ([]*primary.Instance, error) {
	views, err := a.service.ListInstances(ctx, shipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	a.print(views)
	return views, nil
}

// Fanout prints the views refreshed when the ship changes.
func (a *InstanceAdapter) Fanout(ctx context.Context, shipID int64) ([]*primary.Instance, error) {
	views, err := a.service.ListFanout(ctx, shipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fan-out: %w", err)
	}
	a.print(views)
	return views, nil
}

func (a *InstanceAdapter) print(views []*primary.Instance) {
	if len(views) == 0 {
		fmt.Fprintln(a.out, "No views registered.")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSHIP\tGUILD\tCHANNEL\tMESSAGE\tORIGINAL")
	fmt.Fprintln(w, "--\t----\t-----\t-------\t-------\t--------")
	for _, v := range views {
		orig := ""
		if v.IsOriginal {
			orig = "yes"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%s\n", v.ID, v.ShipID, v.GuildID, v.ChannelID, v.MessageID, orig)
	}
	w.Flush()
}
