package cmd

import (
	"context"
	"fmt"

	"github.com/nmartinez/oddsedge/internal/tracker"
	"github.com/nmartinez/oddsedge/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the settled-bet performance report",
	Long: `Aggregates every settled bet into a performance report:
record, win rate, total staked, profit and loss, ROI and average
closing line value.`,
	RunE: runReport,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
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

	trk := tracker.New(store, logger)

	report, err := trk.PerformanceReport(context.Background())
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if report == nil {
		fmt.Println("No settled bets recorded yet.")
		return nil
	}

	fmt.Println("📊 BET PERFORMANCE")
	fmt.Printf("  Record:       %d-%d-%d (%d settled)\n", report.Wins, report.Losses, report.Voids, report.TotalBets)
	fmt.Printf("  Win rate:     %.1f%%\n", report.WinRate)
	fmt.Printf("  Total staked: $%.2f\n", report.TotalStaked)
	fmt.Printf("  Total P&L:    $%+.2f\n", report.TotalPnL)
	fmt.Printf("  ROI:          %+.2f%%\n", report.ROI)
	fmt.Printf("  Avg CLV:      %+.2f%%\n", report.AvgCLV)

	return nil
}
