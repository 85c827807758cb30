package cmd

import (
	"context"
	"fmt"

	"github.com/nmartinez/oddsedge/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Creates the games, odds_snapshots, value_bets and bet_results
tables with their unique constraints and indexes. Safe to run more than
once; existing tables are left untouched.`,
	RunE: runMigrate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	err = store.Migrate(context.Background())
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	fmt.Println("Schema is up to date.")
	return nil
}
