package cmd

import (
	"context"
	"fmt"

	"github.com/nmartinez/oddsedge/internal/feed"
	"github.com/nmartinez/oddsedge/internal/ingest"
	"github.com/nmartinez/oddsedge/internal/storage"
	"github.com/nmartinez/oddsedge/pkg/cache"
	"github.com/nmartinez/oddsedge/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass",
	Long: `Fetches upcoming head-to-head odds for every configured sport
(or the sports given with --sport) and stores one snapshot per game and
bookmaker. Duplicate snapshots are skipped.`,
	RunE: runIngest,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringSliceP("sport", "s", nil, "League keys to ingest (defaults to SPORTS)")
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	gameCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer gameCache.Close()

	feedClient := feed.NewClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.FeedTimeout, logger)

	service := ingest.NewService(ingest.Config{
		Bookmakers: cfg.AllBooks(),
		Horizon:    cfg.LookbackHorizon,
		Logger:     logger,
	}, feedClient, store, gameCache)

	sports, _ := cmd.Flags().GetStringSlice("sport")
	if len(sports) == 0 {
		sports = cfg.Sports
	}

	ctx := context.Background()
	total := 0

	for _, sport := range sports {
		n, err := service.Ingest(ctx, sport)
		if err != nil {
			logger.Error("ingest-sport-failed", zap.String("sport", sport), zap.Error(err))
			continue
		}
		total += n
	}

	fmt.Printf("Ingested %d odds snapshots across %d sport(s)\n", total, len(sports))
	return nil
}

// openStore connects to Postgres with the configured credentials.
func openStore(cfg *config.Config, logger *zap.Logger) (*storage.PostgresStore, error) {
	store, err := storage.NewPostgresStore(&storage.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return store, nil
}
