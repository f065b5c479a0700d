package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/shiptracker/internal/ports/primary"
	"github.com/example/shiptracker/internal/wire"
)

// SupplyCmd returns the supply command
func SupplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supply",
		Short: "Track ship supplies",
		Long: `Adjust per-ship resource quantities. Quantities never go below zero;
every change is recorded in the ship's supply history.`,
	}

	cmd.AddCommand(supplyAddCmd())
	cmd.AddCommand(supplySetCmd())

	return cmd
}

func supplyAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [ship-id] [resource] [delta]",
		Short: "Add (or with a negative delta, consume) a resource",
		Example: `  shiptracker supply add 4 shells 20
  shiptracker supply add 4 shells -- -5`,
		Args: cobra.ExactArgs(3),
		RunE: withShipID(func(cmd *cobra.Command, id int64, args []string) error {
			delta, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[1])
			}
			_, err = wire.ShipAdapter().AdjustSupply(actingContext(cmd), primary.AdjustSupplyRequest{
				ShipID:   id,
				Resource: args[0],
				Delta:    delta,
			})
			return err
		}),
	}
}

func supplySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [ship-id] [resource] [quantity]",
		Short: "Set a resource quantity",
		Args:  cobra.ExactArgs(3),
		RunE: withShipID(func(cmd *cobra.Command, id int64, args []string) error {
			qty, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			_, err = wire.ShipAdapter().SetSupply(actingContext(cmd), primary.SetSupplyRequest{
				ShipID:   id,
				Resource: args[0],
				Quantity: qty,
			})
			return err
		}),
	}
}
