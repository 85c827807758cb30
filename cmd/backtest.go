package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nmartinez/oddsedge/internal/backtest"
	"github.com/nmartinez/oddsedge/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay the strategy over settled games",
	Long: `Replays the soft-vs-sharp strategy over stored snapshots of
settled games in a date range, compounding a simulated bankroll with
fractional-Kelly stakes, and prints the resulting record and ROI.

Dates are given as YYYY-MM-DD.`,
	RunE: runBacktest,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringP("league", "l", "basketball_nba", "League key to replay")
	backtestCmd.Flags().String("from", "", "Start date (inclusive)")
	backtestCmd.Flags().String("to", "", "End date (exclusive)")
	backtestCmd.Flags().Float64("bankroll", 1000, "Starting bankroll")
	_ = backtestCmd.MarkFlagRequired("from")
	_ = backtestCmd.MarkFlagRequired("to")
}

func runBacktest(cmd *cobra.Command, args []string) error {
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

	league, _ := cmd.Flags().GetString("league")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	bankroll, _ := cmd.Flags().GetFloat64("bankroll")

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return fmt.Errorf("parse --from: %w", err)
	}

	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return fmt.Errorf("parse --to: %w", err)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	bt := backtest.New(backtest.Config{
		SharpBooks:      cfg.SharpBooks,
		SoftBooks:       cfg.SoftBooks,
		MinEdgePercent:  cfg.MinEdgePercent,
		KellyFraction:   cfg.KellyFraction,
		MaxBetPercent:   cfg.MaxBetPercent,
		InitialBankroll: bankroll,
		Logger:          logger,
	}, store)

	result, err := bt.Run(context.Background(), league, from, to)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	result.Print()
	return nil
}
