package app

import (
	"context"
	"fmt"

	"github.com/nmartinez/oddsedge/internal/feed"
	"github.com/nmartinez/oddsedge/internal/health"
	"github.com/nmartinez/oddsedge/internal/ingest"
	"github.com/nmartinez/oddsedge/internal/market"
	"github.com/nmartinez/oddsedge/internal/storage"
	"github.com/nmartinez/oddsedge/internal/value"
	"github.com/nmartinez/oddsedge/pkg/cache"
	"github.com/nmartinez/oddsedge/pkg/config"
	"github.com/nmartinez/oddsedge/pkg/healthprobe"
	"github.com/nmartinez/oddsedge/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	sports := cfg.Sports
	if len(opts.Sports) > 0 {
		sports = opts.Sports
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	gameCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	store, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	feedClient := feed.NewClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.FeedTimeout, logger)

	ingester := ingest.NewService(ingest.Config{
		Bookmakers: cfg.AllBooks(),
		Horizon:    cfg.LookbackHorizon,
		Logger:     logger,
	}, feedClient, store, gameCache)

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

	dataChecker := health.NewChecker(store, logger)

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Store:         store,
		DataChecker:   dataChecker,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		store:         store,
		feedClient:    feedClient,
		ingester:      ingester,
		engine:        engine,
		scanner:       scanner,
		dataChecker:   dataChecker,
		sports:        sports,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items (1000 games)
		MaxCost:     1000,  // Maximum 1000 items in cache
		BufferItems: 64,    // Buffer size for Get operations
		Logger:      logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
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
		return nil, fmt.Errorf("create postgres store: %w", err)
	}
	return store, nil
}
