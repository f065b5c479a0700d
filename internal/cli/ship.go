package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/wire"
)

// ShipCmd returns the ship command
func ShipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ship",
		Short: "Manage ships",
		Long: `Create, update and inspect ships.

Ships are never deleted. Every change is recorded in the ship's history
and propagated to linked copies; the command prints the views that need
a refresh.`,
	}

	cmd.AddCommand(shipCreateCmd())
	cmd.AddCommand(shipListCmd())
	cmd.AddCommand(shipShowCmd())
	cmd.AddCommand(shipSetCmd())
	cmd.AddCommand(shipEditCmd())
	cmd.AddCommand(shipDepartCmd())
	cmd.AddCommand(shipReturnCmd())
	cmd.AddCommand(shipRepairCmd())
	cmd.AddCommand(shipRepairedCmd())
	cmd.AddCommand(shipDeadCmd())
	cmd.AddCommand(shipLockCmd())
	cmd.AddCommand(shipUnlockCmd())
	cmd.AddCommand(shipLinkCmd())
	cmd.AddCommand(shipShareCmd())
	cmd.AddCommand(shipRedeemCmd())
	cmd.AddCommand(shipDeleteCmd())

	return cmd
}

func shipCreateCmd() *cobra.Command {
	var guildID, warID int64
	var defaults []string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a ship in a guild's war",
		Long: `Create a ship. Names are unique per guild and war, ignoring case.

Examples:
  shiptracker ship create Alpha --guild 7 --war 1
  shiptracker ship create Bravo --guild 7 --set type=Frigate --set home_port=Kingsport`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if guildID == 0 {
				guildID = actingAs.guild
			}
			if warID == 0 {
				warID = wire.Config().War
			}
			values, err := parseAssignments(defaults)
			if err != nil {
				return err
			}
			m := make(map[string]string, len(values))
			for _, v := range values {
				m[v.Field] = v.Value
			}
			_, err = wire.ShipAdapter().Create(actingContext(cmd), primary.CreateShipRequest{
				GuildID:  guildID,
				WarID:    warID,
				Name:     args[0],
				Defaults: m,
			})
			return err
		},
	}

	cmd.Flags().Int64Var(&guildID, "guild", 0, "Owning guild (default: --as-guild)")
	cmd.Flags().Int64Var(&warID, "war", 0, "War id (default: SHIPTRACKER_WAR)")
	cmd.Flags().StringArrayVar(&defaults, "set", nil, "Initial field value as field=value (repeatable)")

	return cmd
}

func shipListCmd() *cobra.Command {
	var filters primary.ShipFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ships",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.ShipAdapter().List(actingContext(cmd), filters)
			return err
		},
	}

	cmd.Flags().Int64Var(&filters.GuildID, "guild", 0, "Filter by guild")
	cmd.Flags().Int64Var(&filters.WarID, "war", 0, "Filter by war")
	cmd.Flags().StringVar(&filters.Status, "status", "", "Filter by status (Parked, Deployed, Repairing, Dead)")
	cmd.Flags().StringVar(&filters.NameContains, "name", "", "Filter by name substring")
	cmd.Flags().BoolVar(&filters.ExcludeDead, "alive", false, "Hide dead ships")
	cmd.Flags().IntVar(&filters.Limit, "limit", 0, "Maximum number of ships")

	return cmd
}

func shipShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ship-id]",
		Short: "Show ship details and supplies",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.ShipAdapter().Show(actingContext(cmd), id)
			return err
		}),
	}
}

func shipSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [ship-id] [field] [value]",
		Short: "Set one field",
		Long: `Set one field. Fields: name, type, status, damage, location, home_port,
notes, keys, image_url, regiment. An empty value clears optional fields.`,
		Args: cobra.ExactArgs(3),
		RunE: withShipID(func(cmd *cobra.Command, id int64, args []string) error {
			_, err := wire.ShipAdapter().Update(actingContext(cmd), id, args[0], args[1])
			return err
		}),
	}
}

func shipEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [ship-id] [field=value]...",
		Short: "Set several fields in one operation",
		Long:  `Set several fields at once. Either every change applies or none does.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: withShipID(func(cmd *cobra.Command, id int64, args []string) error {
			changes, err := parseAssignments(args)
			if err != nil {
				return err
			}
			_, err = wire.ShipAdapter().Edit(actingContext(cmd), id, changes)
			return err
		}),
	}
}

func shipDepartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "depart [ship-id]",
		Short: "Deploy a ship",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.ShipAdapter().Depart(actingContext(cmd), id)
			return err
		}),
	}
}

func shipReturnCmd() *cobra.Command {
	var where, damage, notes string

	cmd := &cobra.Command{
		Use:   "return [ship-id]",
		Short: "Return a ship to port",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.ShipAdapter().ReturnToPort(actingContext(cmd), primary.ReturnToPortRequest{
				ShipID: id,
				Where:  where,
				Damage: damage,
				Notes:  notes,
			})
			return err
		}),
	}

	cmd.Flags().StringVar(&where, "where", "", "Port the ship is parked at")
	cmd.Flags().StringVar(&damage, "damage", "", "Damage after the sortie (0-5)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")

	return cmd
}

func shipRepairCmd() *cobra.Command {
	var drydock string

	cmd := &cobra.Command{
		Use:   "repair [ship-id]",
		Short: "Start repairs",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.ShipAdapter().StartRepairs(actingContext(cmd), id, drydock)
			return err
		}),
	}

	cmd.Flags().StringVar(&drydock, "at", "", "Drydock location")

	return cmd
}

func shipRepairedCmd() *cobra.Command {
	var parkedAt, notes string

	cmd := &cobra.Command{
		Use:   "repaired [ship-id]",
		Short: "Finish repairs and park the ship",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.ShipAdapter().FinishRepairs(actingContext(cmd), id, parkedAt, notes)
			return err
		}),
	}

	cmd.Flags().StringVar(&parkedAt, "at", "", "Where the ship is parked")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes")

	return cmd
}

func shipDeadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dead [ship-id]",
		Short: "Mark a ship as lost",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.ShipAdapter().MarkDead(actingContext(cmd), id)
			return err
		}),
	}
}

func shipLockCmd() *cobra.Command {
	var d time.Duration

	cmd := &cobra.Command{
		Use:   "lock [ship-id]",
		Short: "Lock the ship's squad",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.ShipAdapter().LockSquad(actingContext(cmd), id, d)
			return err
		}),
	}

	cmd.Flags().DurationVar(&d, "for", 0, "Lock duration (default 48h)")

	return cmd
}

func shipUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock [ship-id]",
		Short: "Clear the ship's squad lock",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.ShipAdapter().ClearSquadLock(actingContext(cmd), id)
			return err
		}),
	}
}

func shipLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link [ship-id] [root-id]",
		Short: "Link a ship as a copy of another",
		Long: `Link a ship under a root ship. Shared fields then propagate across the
link group; each copy keeps its own name and share code.`,
		Args: cobra.ExactArgs(2),
		RunE: withShipID(func(cmd *cobra.Command, id int64, args []string) error {
			rootID, err := parseID("ship", args[0])
			if err != nil {
				return err
			}
			_, err = wire.ShipAdapter().Link(actingContext(cmd), id, rootID)
			return err
		}),
	}
}

func shipShareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "share [ship-id]",
		Short: "Generate a one-time share code",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.ShipAdapter().Share(actingContext(cmd), id)
			return err
		}),
	}
}

func shipRedeemCmd() *cobra.Command {
	var req primary.RedeemShareCodeRequest

	cmd := &cobra.Command{
		Use:   "redeem [code]",
		Short: "Import a shared ship into a guild as a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Code = args[0]
			if req.GuildID == 0 {
				req.GuildID = actingAs.guild
			}
			_, err := wire.ShipAdapter().Redeem(actingContext(cmd), req)
			return err
		},
	}

	cmd.Flags().Int64Var(&req.GuildID, "guild", 0, "Redeeming guild (default: --as-guild)")
	cmd.Flags().Int64Var(&req.ChannelID, "channel", 0, "Channel of the new view")
	cmd.Flags().Int64Var(&req.MessageID, "message", 0, "Message of the new view")
	cmd.MarkFlagRequired("channel")
	cmd.MarkFlagRequired("message")

	return cmd
}

func shipDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "delete [ship-id]",
		Short:  "Delete a ship (always refused: ships are archive-only)",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			return wire.ShipAdapter().Delete(actingContext(cmd), id)
		}),
	}
}

// withShipID parses args[0] as a ship id and passes the remaining args on.
func withShipID(fn func(cmd *cobra.Command, id int64, rest []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID("ship", args[0])
		if err != nil {
			return err
		}
		return fn(cmd, id, args[1:])
	}
}

func parseAssignments(args []string) ([]primary.FieldChange, error) {
	changes := make([]primary.FieldChange, 0, len(args))
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		changes = append(changes, primary.FieldChange{Field: strings.TrimSpace(field), Value: value})
	}
	return changes, nil
}
