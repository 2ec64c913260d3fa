package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/edgard/maintain/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down [steps]|version]",
	Short: "Manage database migrations",
	Long: `Apply pending migrations (up, the default), roll back the given number
of steps (down, default 1) or print the current schema version.`,
	Args:      cobra.RangeArgs(0, 2),
	ValidArgs: []string{"up", "down", "version"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	action := "up"
	if len(args) > 0 {
		action = args[0]
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	// Open without migrating so down and version see the real state.
	db, err := database.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.CloseDB(db)

	switch action {
	case "up":
		if err := database.ApplyMigrations(db.DB, a.cfg.Database.Driver); err != nil {
			return err
		}
	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid step count %q: %w", args[1], err)
			}
		}
		if err := database.RollbackMigrations(db.DB, a.cfg.Database.Driver, steps); err != nil {
			return err
		}
		a.log.Info("Rolled back migrations", "steps", steps)
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}

	version, dirty, err := database.MigrationVersion(db.DB, a.cfg.Database.Driver)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
