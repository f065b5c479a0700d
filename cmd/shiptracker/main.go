package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/shiptracker/internal/cli"
	"github.com/example/shiptracker/internal/version"
	"github.com/example/shiptracker/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "shiptracker",
		Short:   "Shiptracker - ship and war records for guilds",
		Version: version.String(),
		Long: `Shiptracker keeps the ship roster of guilds across wars: status, damage,
supplies, squad locks and an append-only history of every change.
Ships can be shared between guilds and linked so copies stay in sync.`,
	}
	cli.AddPrincipalFlags(rootCmd)

	// Records
	rootCmd.AddCommand(cli.WarCmd())
	rootCmd.AddCommand(cli.ShipCmd())
	rootCmd.AddCommand(cli.SupplyCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.ViewCmd())

	// Access
	rootCmd.AddCommand(cli.AuthCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	err := rootCmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	wire.Shutdown(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
