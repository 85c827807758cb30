package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "oddsedge",
	Short: "Sports betting value detection pipeline",
	Long: `oddsedge polls The Odds API for head-to-head odds, builds a
sharp-book consensus probability per game, and flags soft-book prices
that beat the consensus by a configurable edge.

Detected value bets are sized with fractional Kelly staking and stored
in Postgres for reporting, tracking and backtesting.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional .env for local development
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
