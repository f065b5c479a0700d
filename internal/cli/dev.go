package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/shiptracker/internal/config"
	"github.com/example/shiptracker/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
	}

	cmd.AddCommand(devSeedCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a database filled with fixtures",
		Long: `Create a fresh database with one war, four ships across guilds 7 and 8,
grants and views.

Safety: the target must be given with --db and must not contain data
yet, so a live database is never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required\n\nThis safety check prevents seeding %s%s by accident", config.EnvPrefix, "DB_PATH")
			}

			database, err := db.Open(cmd.Context(), dbPath, 0)
			if err != nil {
				return err
			}
			defer database.Close()

			var ships int
			if err := database.QueryRowContext(cmd.Context(), "SELECT COUNT(*) FROM ships").Scan(&ships); err != nil {
				return fmt.Errorf("failed to inspect database: %w", err)
			}
			if ships > 0 {
				return fmt.Errorf("%s already has %d ship(s); refusing to seed", dbPath, ships)
			}

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}
			fmt.Printf("✓ Seeded %s\n", dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Database file to create")

	return cmd
}
