package cmd

import (
	"context"
	"fmt"

	"github.com/nmartinez/oddsedge/internal/market"
	"github.com/nmartinez/oddsedge/internal/value"
	"github.com/nmartinez/oddsedge/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one value scan over stored odds",
	Long: `Builds a sharp-book consensus for every open game, compares
soft-book prices against it and records every discrepancy at or above
MIN_EDGE_PERCENT as a value bet with a fractional-Kelly stake.

Detected bets are printed to the console.`,
	RunE: runScan,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Float64P("min-edge", "e", 0, "Override MIN_EDGE_PERCENT for this scan")
}

func runScan(cmd *cobra.Command, args []string) error {
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

	engine := market.NewEngine(market.Config{
		SharpBooks: cfg.SharpBooks,
		SoftBooks:  cfg.SoftBooks,
		Logger:     logger,
	}, store)

	scanner := value.NewScanner(value.Config{
		DefaultBankroll: cfg.DefaultBankroll,
		KellyFraction:   cfg.KellyFraction,
		MaxBetPercent:   cfg.MaxBetPercent,
		Logger:          logger,
	}, engine, store)

	minEdge := cfg.MinEdgePercent
	if cmd.Flags().Changed("min-edge") {
		minEdge, _ = cmd.Flags().GetFloat64("min-edge")
	}

	bets, err := scanner.Scan(context.Background(), minEdge, cfg.MinProbability)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	printer := value.NewConsolePrinter(logger)
	printer.PrintBatch(bets)

	return nil
}
