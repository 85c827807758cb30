package app

import (
	"context"
	"sync"

	"github.com/nmartinez/oddsedge/internal/feed"
	"github.com/nmartinez/oddsedge/internal/health"
	"github.com/nmartinez/oddsedge/internal/ingest"
	"github.com/nmartinez/oddsedge/internal/market"
	"github.com/nmartinez/oddsedge/internal/storage"
	"github.com/nmartinez/oddsedge/internal/value"
	"github.com/nmartinez/oddsedge/pkg/config"
	"github.com/nmartinez/oddsedge/pkg/healthprobe"
	"github.com/nmartinez/oddsedge/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator. It owns the poll loop that
// ingests odds and scans for value, plus the HTTP surface around it.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	store         storage.Store
	feedClient    *feed.Client
	ingester      *ingest.Service
	engine        *market.Engine
	scanner       *value.Scanner
	dataChecker   *health.Checker
	sports        []string
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	Sports []string // For debugging: override the configured league list
}
