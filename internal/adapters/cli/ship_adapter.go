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

// ShipAdapter is a thin adapter that translates CLI operations to ShipService calls.
// It depends only on the ShipService interface, enabling easy testing with mocks.
type ShipAdapter struct {
	service primary.ShipService
	out     io.Writer
}

// NewShipAdapter creates a new ShipAdapter with the given service.
func NewShipAdapter(service primary.ShipService, out io.Writer) *ShipAdapter {
	return &ShipAdapter{
		service: service,
		out:     out,
	}
}

// List lists ships matching filters.
func (a *ShipAdapter) List(ctx context.Context, filters primary.ShipFilters) ([]*primary.Ship, error) {
	ships, err := a.service.ListShips(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list ships: %w", err)
	}

	if len(ships) == 0 {
		fmt.Fprintln(a.out, "No ships found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first ship:")
		fmt.Fprintln(a.out, "  shiptracker ship create Alpha --guild 7 --war 1")
		return ships, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tDAMAGE\tLOCATION\tSQUAD")
	fmt.Fprintln(w, "--\t----\t----\t------\t------\t--------\t-----")

	for _, s := range ships {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d/5\t%s\t%s\n",
			s.ID,
			s.Name,
			orDash(s.Type),
			StatusLabel(s.Status),
			s.Damage,
			orDash(s.Location),
			squadLabel(s),
		)
	}

	w.Flush()
	return ships, nil
}

// Show displays details for a single ship and its supplies.
func (a *ShipAdapter) Show(ctx context.Context, shipID int64) (*primary.Ship, error) {
	s, err := a.service.GetShip(ctx, shipID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ship: %w", err)
	}
	supplies, err := a.service.ListSupplies(ctx, shipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplies: %w", err)
	}

	fmt.Fprintf(a.out, "\nShip %d: %s\n", s.ID, s.Name)
	fmt.Fprintf(a.out, "Guild/War: %d / %d\n", s.GuildID, s.WarID)
	fmt.Fprintf(a.out, "Type:      %s\n", orDash(s.Type))
	fmt.Fprintf(a.out, "Status:    %s\n", StatusLabel(s.Status))
	fmt.Fprintf(a.out, "Damage:    %d/5\n", s.Damage)
	fmt.Fprintf(a.out, "Location:  %s\n", orDash(s.Location))
	fmt.Fprintf(a.out, "Home port: %s\n", orDash(s.HomePort))
	fmt.Fprintf(a.out, "Regiment:  %s\n", orDash(s.Regiment))
	fmt.Fprintf(a.out, "Keys:      %s\n", orDash(s.Keys))
	fmt.Fprintf(a.out, "Squad:     %s\n", squadLabel(s))
	if s.Notes != "" {
		fmt.Fprintf(a.out, "Notes:     %s\n", s.Notes)
	}
	if s.ImageURL != "" {
		fmt.Fprintf(a.out, "Image:     %s\n", s.ImageURL)
	}
	if s.LinkRootID != 0 {
		fmt.Fprintf(a.out, "Linked to: ship %d\n", s.LinkRootID)
	}
	if s.ShareCode != "" {
		fmt.Fprintf(a.out, "Share code: %s\n", s.ShareCode)
	}
	fmt.Fprintf(a.out, "Updated:   %s\n", s.UpdatedAt.Format(time.RFC3339))

	if len(supplies) > 0 {
		fmt.Fprintln(a.out, "\nSupplies:")
		for _, sup := range supplies {
			fmt.Fprintf(a.out, "  %-16s %d\n", sup.Resource, sup.Quantity)
		}
	}
	fmt.Fprintln(a.out)

	return s, nil
}

// Create creates a ship.
func (a *ShipAdapter) Create(ctx context.Context, req primary.CreateShipRequest) (*primary.ShipResult, error) {
	res, err := a.service.CreateShip(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created ship %d: %s (guild %d, war %d)\n", res.Ship.ID, res.Ship.Name, res.Ship.GuildID, res.Ship.WarID)
	return res, nil
}

// Update sets one field.
func (a *ShipAdapter) Update(ctx context.Context, shipID int64, field, value string) (*primary.ShipResult, error) {
	res, err := a.service.UpdateShipField(ctx, primary.UpdateShipFieldRequest{ShipID: shipID, Field: field, Value: value})
	if err != nil {
		return nil, err
	}
	a.printResult(fmt.Sprintf("Set %s", field), res)
	return res, nil
}

// Edit sets several fields in one operation.
func (a *ShipAdapter) Edit(ctx context.Context, shipID int64, changes []primary.FieldChange) (*primary.ShipResult, error) {
	res, err := a.service.EditShipFields(ctx, primary.EditShipFieldsRequest{ShipID: shipID, Changes: changes})
	if err != nil {
		return nil, err
	}
	a.printResult(fmt.Sprintf("Updated %d field(s)", len(changes)), res)
	return res, nil
}

// StartRepairs moves a ship into drydock.
func (a *ShipAdapter) StartRepairs(ctx context.Context, shipID int64, drydock string) (*primary.ShipResult, error) {
	return a.transition(a.service.StartRepairs(ctx, shipID, drydock))("Repairs started")
}

// FinishRepairs parks a repaired ship.
func (a *ShipAdapter) FinishRepairs(ctx context.Context, shipID int64, parkedAt, notes string) (*primary.ShipResult, error) {
	return a.transition(a.service.FinishRepairs(ctx, shipID, parkedAt, notes))("Repairs finished")
}

// Depart deploys a ship.
func (a *ShipAdapter) Depart(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
	return a.transition(a.service.Depart(ctx, shipID))("Departed")
}

// ReturnToPort parks a ship after a sortie.
func (a *ShipAdapter) ReturnToPort(ctx context.Context, req primary.ReturnToPortRequest) (*primary.ShipResult, error) {
	return a.transition(a.service.ReturnToPort(ctx, req))("Returned to port")
}

// MarkDead records the loss of a ship.
func (a *ShipAdapter) MarkDead(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
	return a.transition(a.service.MarkDead(ctx, shipID))("Marked dead")
}

// LockSquad locks the ship's squad.
func (a *ShipAdapter) LockSquad(ctx context.Context, shipID int64, d time.Duration) (*primary.ShipResult, error) {
	return a.transition(a.service.LockSquad(ctx, shipID, d))("Squad locked")
}

// ClearSquadLock releases the ship's squad lock.
func (a *ShipAdapter) ClearSquadLock(ctx context.Context, shipID int64) (*primary.ShipResult, error) {
	return a.transition(a.service.ClearSquadLock(ctx, shipID))("Squad lock cleared")
}

// Link links a ship under a root ship.
func (a *ShipAdapter) Link(ctx context.Context, shipID, rootID int64) (*primary.ShipResult, error) {
	return a.transition(a.service.LinkShip(ctx, shipID, rootID))(fmt.Sprintf("Linked to ship %d", rootID))
}

// Delete attempts a delete; ships are archive-only so this reports why not.
func (a *ShipAdapter) Delete(ctx context.Context, shipID int64) error {
	return a.service.DeleteShip(ctx, shipID)
}

// AdjustSupply applies a delta to a resource.
func (a *ShipAdapter) AdjustSupply(ctx context.Context, req primary.AdjustSupplyRequest) (*primary.SupplyResult, error) {
	res, err := a.service.AdjustSupply(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s %+d → %d on ship %d\n", res.Supply.Resource, req.Delta, res.Supply.Quantity, res.Supply.ShipID)
	a.printFanout(res.Fanout)
	return res, nil
}

// SetSupply sets a resource to an absolute quantity.
func (a *ShipAdapter) SetSupply(ctx context.Context, req primary.SetSupplyRequest) (*primary.SupplyResult, error) {
	res, err := a.service.SetSupply(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s = %d on ship %d\n", res.Supply.Resource, res.Supply.Quantity, res.Supply.ShipID)
	a.printFanout(res.Fanout)
	return res, nil
}

// Share generates a one-time share code.
func (a *ShipAdapter) Share(ctx context.Context, shipID int64) (*primary.ShareCodeResult, error) {
	res, err := a.service.GenerateShareCode(ctx, shipID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Share code for ship %d: %s\n", res.Ship.ID, color.New(color.Bold).Sprint(res.Code))
	fmt.Fprintln(a.out, "  The code works once.")
	return res, nil
}

// Redeem consumes a share code into a view in the caller's guild.
func (a *ShipAdapter) Redeem(ctx context.Context, req primary.RedeemShareCodeRequest) (*primary.RedeemShareCodeResult, error) {
	res, err := a.service.RedeemShareCode(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Imported ship %d: %s into guild %d\n", res.Ship.ID, res.Ship.Name, res.Instance.GuildID)
	a.printFanout(res.Fanout)
	return res, nil
}

// Helper methods

func (a *ShipAdapter) transition(res *primary.ShipResult, err error) func(verb string) (*primary.ShipResult, error) {
	return func(verb string) (*primary.ShipResult, error) {
		if err != nil {
			return nil, err
		}
		a.printResult(verb, res)
		return res, nil
	}
}

func (a *ShipAdapter) printResult(verb string, res *primary.ShipResult) {
	fmt.Fprintf(a.out, "✓ %s: ship %d %s [%s]\n", verb, res.Ship.ID, res.Ship.Name, StatusLabel(res.Ship.Status))
	if len(res.Changed) > 1 {
		fmt.Fprintf(a.out, "  propagated to %d linked ship(s)\n", len(res.Changed)-1)
	}
	a.printFanout(res.Fanout)
}

func (a *ShipAdapter) printFanout(views []*primary.Instance) {
	for _, v := range views {
		fmt.Fprintf(a.out, "  refresh: guild %d channel %d message %d\n", v.GuildID, v.ChannelID, v.MessageID)
	}
}

// StatusLabel colours a ship status for terminal output.
func StatusLabel(status string) string {
	switch status {
	case "Parked":
		return color.New(color.FgGreen).Sprint(status)
	case "Deployed":
		return color.New(color.FgCyan).Sprint(status)
	case "Repairing":
		return color.New(color.FgYellow).Sprint(status)
	case "Dead":
		return color.New(color.FgRed).Sprint(status)
	}
	return status
}

func squadLabel(s *primary.Ship) string {
	if !s.SquadLocked {
		return "open"
	}
	return color.New(color.FgYellow).Sprintf("locked until %s", time.Unix(s.SquadLockUntil, 0).Format("Jan 2 15:04"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
