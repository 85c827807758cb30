package app

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.Strings("sports", a.sports),
		zap.Duration("poll-interval", a.cfg.PollInterval),
		zap.Float64("min-edge-percent", a.cfg.MinEdgePercent),
		zap.String("log-level", a.cfg.LogLevel))

	a.startComponents()

	// Mark as ready
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("feed-url", a.cfg.OddsAPIBaseURL))

	// Wait for shutdown signal
	return a.waitForShutdown()
}

func (a *App) startComponents() {
	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	// Start the ingest-and-scan poll loop
	a.wg.Add(1)
	go a.runPollLoop()
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

// runPollLoop runs one ingest-and-scan cycle immediately, then repeats
// every PollInterval until the context is cancelled.
func (a *App) runPollLoop() {
	defer a.wg.Done()

	a.runCycle()

	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.runCycle()
		}
	}
}

// runCycle ingests fresh odds for every configured sport, then scans all
// open games for value. A failing sport does not stop the cycle.
func (a *App) runCycle() {
	start := time.Now()
	written := 0

	for _, sport := range a.sports {
		n, err := a.ingester.Ingest(a.ctx, sport)
		if err != nil {
			a.logger.Warn("poll-cycle-ingest-failed",
				zap.String("sport", sport),
				zap.Error(err))
			continue
		}
		written += n
	}

	bets, err := a.scanner.Scan(a.ctx, a.cfg.MinEdgePercent, a.cfg.MinProbability)
	if err != nil {
		a.logger.Error("poll-cycle-scan-failed", zap.Error(err))
		return
	}

	a.logger.Info("poll-cycle-complete",
		zap.Int("snapshots-written", written),
		zap.Int("value-bets-found", len(bets)),
		zap.Duration("elapsed", time.Since(start)))
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
