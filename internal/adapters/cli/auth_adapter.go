package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/shiptracker/internal/ports/primary"
)

// AuthAdapter translates CLI grant operations to AuthService calls.
type AuthAdapter struct {
	service primary.AuthService
	out     io.Writer
}

// NewAuthAdapter creates a new AuthAdapter with the given service.
func NewAuthAdapter(service primary.AuthService, out io.Writer) *AuthAdapter {
	return &AuthAdapter{
		service: service,
		out:     out,
	}
}

// Grant adds a guild role, guild user or ship user grant. Exactly one of
// roleID and userID is used; shipID selects a ship grant.
func (a *AuthAdapter) Grant(ctx context.Context, target GrantTarget) error {
	var err error
	switch {
	case target.ShipID != 0:
		err = a.service.GrantShipUser(ctx, target.ShipID, target.UserID)
	case target.RoleID != 0:
		err = a.service.GrantGuildRole(ctx, target.GuildID, target.RoleID)
	default:
		err = a.service.GrantGuildUser(ctx, target.GuildID, target.UserID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Granted %s\n", target)
	return nil
}

// Revoke removes a grant.
func (a *AuthAdapter) Revoke(ctx context.Context, target GrantTarget) error {
	var err error
	switch {
	case target.ShipID != 0:
		err = a.service.RevokeShipUser(ctx, target.ShipID, target.UserID)
	case target.RoleID != 0:
		err = a.service.RevokeGuildRole(ctx, target.GuildID, target.RoleID)
	default:
		err = a.service.RevokeGuildUser(ctx, target.GuildID, target.UserID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Revoked %s\n", target)
	return nil
}

// List prints a guild's grants.
func (a *AuthAdapter) List(ctx context.Context, guildID int64) (*primary.GuildGrants, error) {
	g, err := a.service.ListGuildGrants(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	fmt.Fprintf(a.out, "Guild %d\n", g.GuildID)
	fmt.Fprintf(a.out, "  roles: %s\n", joinIDs(g.RoleIDs))
	fmt.Fprintf(a.out, "  users: %s\n", joinIDs(g.UserIDs))
	return g, nil
}

// ListShip prints a ship's user grants.
func (a *AuthAdapter) ListShip(ctx context.Context, shipID int64) ([]*primary.ShipGrant, error) {
	grants, err := a.service.ListShipGrants(ctx, shipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ship grants: %w", err)
	}
	if len(grants) == 0 {
		fmt.Fprintf(a.out, "Ship %d has no user grants.\n", shipID)
		return grants, nil
	}
	for _, g := range grants {
		fmt.Fprintf(a.out, "  user %d (granted by %s)\n", g.UserID, userLabel(g.GrantedBy))
	}
	return grants, nil
}

// Check prints the authorization decision for a query.
func (a *AuthAdapter) Check(ctx context.Context, q primary.AuthQuery) primary.AuthDecision {
	d := a.service.Explain(ctx, q)
	if d.Allowed {
		fmt.Fprintf(a.out, "%s via %s (guild %d)\n", color.New(color.FgGreen).Sprint("allowed"), d.Basis, d.GuildID)
	} else {
		fmt.Fprintln(a.out, color.New(color.FgRed).Sprint("denied"))
	}
	return d
}

// GrantTarget names one grant.
type GrantTarget struct {
	GuildID int64
	RoleID  int64
	UserID  int64
	ShipID  int64
}

func (t GrantTarget) String() string {
	switch {
	case t.ShipID != 0:
		return fmt.Sprintf("user %d on ship %d", t.UserID, t.ShipID)
	case t.RoleID != 0:
		return fmt.Sprintf("role %d in guild %d", t.RoleID, t.GuildID)
	}
	return fmt.Sprintf("user %d in guild %d", t.UserID, t.GuildID)
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
