package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/shiptracker/internal/adapters/cli"
	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/wire"
)

// AuthCmd returns the auth command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage who may change ships",
		Long: `Guild grants (roles or users) cover every ship the guild can see.
Ship grants cover one ship only.`,
	}

	cmd.AddCommand(authGrantCmd())
	cmd.AddCommand(authRevokeCmd())
	cmd.AddCommand(authListCmd())
	cmd.AddCommand(authCheckCmd())

	return cmd
}

func grantTargetFlags(cmd *cobra.Command, t *cliadapter.GrantTarget) {
	cmd.Flags().Int64Var(&t.GuildID, "guild", 0, "Guild id (default: --as-guild)")
	cmd.Flags().Int64Var(&t.RoleID, "role", 0, "Role id")
	cmd.Flags().Int64Var(&t.UserID, "user", 0, "User id")
	cmd.Flags().Int64Var(&t.ShipID, "ship", 0, "Ship id (grants --user on one ship)")
}

func checkGrantTarget(t *cliadapter.GrantTarget) error {
	if t.GuildID == 0 {
		t.GuildID = actingAs.guild
	}
	switch {
	case t.ShipID != 0 && t.UserID == 0:
		return fmt.Errorf("--ship requires --user")
	case t.ShipID == 0 && (t.RoleID == 0) == (t.UserID == 0):
		return fmt.Errorf("exactly one of --role or --user is required")
	case t.ShipID == 0 && t.GuildID == 0:
		return fmt.Errorf("--guild is required")
	}
	return nil
}

func authGrantCmd() *cobra.Command {
	var target cliadapter.GrantTarget

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant a role or user",
		Example: `  shiptracker auth grant --guild 7 --role 700
  shiptracker auth grant --ship 4 --user 2002`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkGrantTarget(&target); err != nil {
				return err
			}
			return wire.AuthAdapter().Grant(actingContext(cmd), target)
		},
	}
	grantTargetFlags(cmd, &target)

	return cmd
}

func authRevokeCmd() *cobra.Command {
	var target cliadapter.GrantTarget

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a role or user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkGrantTarget(&target); err != nil {
				return err
			}
			return wire.AuthAdapter().Revoke(actingContext(cmd), target)
		},
	}
	grantTargetFlags(cmd, &target)

	return cmd
}

func authListCmd() *cobra.Command {
	var guildID, shipID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a guild's or a ship's grants",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := actingContext(cmd)
			if shipID != 0 {
				_, err := wire.AuthAdapter().ListShip(ctx, shipID)
				return err
			}
			if guildID == 0 {
				guildID = actingAs.guild
			}
			_, err := wire.AuthAdapter().List(ctx, guildID)
			return err
		},
	}

	cmd.Flags().Int64Var(&guildID, "guild", 0, "Guild id (default: --as-guild)")
	cmd.Flags().Int64Var(&shipID, "ship", 0, "List one ship's user grants instead")

	return cmd
}

func authCheckCmd() *cobra.Command {
	var shipID int64

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Explain whether the --as-* principal may change a guild's or a ship's records",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := currentPrincipal()
			q := primary.AuthQuery{GuildID: p.GuildID, UserID: p.UserID, RoleIDs: p.RoleIDs}
			if shipID != 0 {
				q.ShipID = &shipID
			}
			wire.AuthAdapter().Check(actingContext(cmd), q)
			return nil
		},
	}

	cmd.Flags().Int64Var(&shipID, "ship", 0, "Check rights on one ship")

	return cmd
}
