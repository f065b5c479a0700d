package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/wire"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Read and append ship history",
		Long: `History is append-only: field updates, kill reports, op debriefs and
supply changes. Nothing here edits or removes a record.`,
	}

	cmd.AddCommand(historyLogCmd())
	cmd.AddCommand(historyListCmd())

	return cmd
}

func historyLogCmd() *cobra.Command {
	var kills, debrief string

	cmd := &cobra.Command{
		Use:     "log [ship-id]",
		Short:   "Log an after-action report",
		Example: `  shiptracker history log 4 --kills "2 destroyers" --debrief "escort run"`,
		Args:    cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			_, err := wire.HistoryAdapter().Log(actingContext(cmd), primary.LogActionRequest{
				ShipID:  id,
				Kills:   kills,
				Debrief: debrief,
			})
			return err
		}),
	}

	cmd.Flags().StringVar(&kills, "kills", "", "Kill report")
	cmd.Flags().StringVar(&debrief, "debrief", "", "Op debrief")

	return cmd
}

func historyListCmd() *cobra.Command {
	var q primary.HistoryQuery

	cmd := &cobra.Command{
		Use:   "list [ship-id]",
		Short: "List one kind of history, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withShipID(func(cmd *cobra.Command, id int64, _ []string) error {
			q.ShipID = id
			_, err := wire.HistoryAdapter().List(actingContext(cmd), q)
			return err
		}),
	}

	cmd.Flags().StringVar(&q.Kind, "kind", "update", "update, kill, op or supply")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "Page size (default 20, max 100)")
	cmd.Flags().StringVar(&q.Cursor, "cursor", "", "Cursor printed by the previous page")

	return cmd
}
