package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/wire"
)

// ViewCmd returns the view command
func ViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Manage rendered views of ships",
		Long: `A view is a (guild, channel, message) that renders a ship. Views of a
ship and its linked copies are refreshed whenever the ship changes.`,
	}

	cmd.AddCommand(viewRegisterCmd())
	cmd.AddCommand(viewListCmd())
	cmd.AddCommand(viewFanoutCmd())

	return cmd
}

func viewRegisterCmd() *cobra.Command {
	var req primary.RegisterInstanceRequest

	cmd := &cobra.Command{
		Use:   "register [ship-id]",
		Short: "Register a view of a ship",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			req.ShipID = id
			if req.GuildID == 0 {
				req.GuildID = actingAs.guild
			}
			_, err := wire.InstanceAdapter().Register(actingContext(cmd), req)
			return err
		}),
	}

	cmd.Flags().Int64Var(&req.GuildID, "guild", 0, "Guild of the view (default: --as-guild)")
	cmd.Flags().Int64Var(&req.ChannelID, "channel", 0, "Channel id")
	cmd.Flags().Int64Var(&req.MessageID, "message", 0, "Message id")
	cmd.Flags().BoolVar(&req.IsOriginal, "original", false, "Mark as the ship's original view")
	cmd.MarkFlagRequired("channel")
	cmd.MarkFlagRequired("message")

	return cmd
}

func viewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [ship-id]",
		Short: "List the views of one ship",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.InstanceAdapter().List(actingContext(cmd), id)
			return err
		}),
	}
}

func viewFanoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fanout [ship-id]",
		Short: "List every view refreshed when the ship changes",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.InstanceAdapter().Fanout(actingContext(cmd), id)
			return err
		}),
	}
}
