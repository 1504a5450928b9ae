package main

import (
	"fmt"
	"os"

	"gamehub/config"
	"gamehub/db"
	"gamehub/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "gamehub",
	Short: "GameHub - video game catalog and store API",
	Long: `GameHub serves a REST API for a video game catalog: games, genres,
platforms, developers and publishers, user accounts with bearer tokens,
reviews with per-game average ratings, and purchases.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		cfg := config.Load()
		utils.InitLogger(cfg.LogLevel, cfg.GinMode)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase connects and, for SQLite, creates the schema in place since
// the SQL migrations target Postgres.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		if err := db.Migrate(conn); err != nil {
			return nil, err
		}
	}
	return conn, nil
}
