package main

import (
	"errors"
	"fmt"

	"gamehub/config"
	"gamehub/db"

	"github.com/spf13/cobra"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the SQL migrations",
	Long:      "Runs the embedded SQL migrations against DATABASE_URL (a postgres:// URL). With DB_DRIVER=sqlite the schema is auto-migrated instead.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		cfg := config.Load()

		if cfg.DBDriver == "sqlite" {
			if direction == "down" {
				return errors.New("down migrations are not supported for sqlite")
			}
			_, err := openDatabase(cfg)
			return err
		}
		if err := db.RunMigrations(cfg.DatabaseURL, direction == "up", migrateSteps); err != nil {
			return fmt.Errorf("migrate %s: %w", direction, err)
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample catalog data",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDatabase(config.Load())
		if err != nil {
			return err
		}
		return db.Seed(conn)
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "Number of migrations to apply or roll back (0 = all)")
}
