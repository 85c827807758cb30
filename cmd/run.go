package cmd

import (
	"fmt"

	"github.com/nmartinez/oddsedge/internal/app"
	"github.com/nmartinez/oddsedge/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the value detection pipeline",
	Long: `Starts the pipeline, which will:
1. Poll The Odds API for upcoming head-to-head odds every POLL_INTERVAL
2. Store one odds snapshot per game and bookmaker
3. Build a sharp-book consensus and scan soft books for value
4. Serve /metrics, /health and the read-only reporting API over HTTP

Use --sport to override the configured league list for debugging.`,
	RunE: runPipeline,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSliceP("sport", "s", nil, "Track only the given league keys (for debugging)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
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

	sports, _ := cmd.Flags().GetStringSlice("sport")

	application, err := app.New(cfg, logger, &app.Options{
		Sports: sports,
	})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
