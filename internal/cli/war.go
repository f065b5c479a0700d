package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/shiptracker/internal/wire"
)

// WarCmd returns the war command
func WarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "war",
		Short: "Manage wars (campaign scopes)",
		Long: `Start, end and inspect wars.

Every ship belongs to exactly one war. Ships can only be created while
their war is open; an ended war stays readable forever. Wars are shared by
every guild, so start and end run only as the system principal (no --as-user).`,
	}

	cmd.AddCommand(warStartCmd())
	cmd.AddCommand(warEndCmd())
	cmd.AddCommand(warListCmd())
	cmd.AddCommand(warShowCmd())
	cmd.AddCommand(warDeleteCmd())

	return cmd
}

func warStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [war-id]",
		Short: "Start a war",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("war", args[0])
			if err != nil {
				return err
			}
			_, err = wire.WarAdapter().Create(actingContext(cmd), id)
			return err
		},
	}
}

func warEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end [war-id]",
		Short: "End a war",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("war", args[0])
			if err != nil {
				return err
			}
			_, err = wire.WarAdapter().End(actingContext(cmd), id)
			return err
		},
	}
}

func warListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List wars, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.WarAdapter().List(actingContext(cmd))
			return err
		},
	}
}

func warShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [war-id]",
		Short: "Show a war",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("war", args[0])
			if err != nil {
				return err
			}
			_, err = wire.WarAdapter().Show(actingContext(cmd), id)
			return err
		},
	}
}

func warDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "delete [war-id]",
		Short:  "Delete a war (always refused: wars are archive-only)",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("war", args[0])
			if err != nil {
				return err
			}
			return wire.WarService().DeleteWar(actingContext(cmd), id)
		},
	}
}
