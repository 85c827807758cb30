package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

const (
	// maxSnapshotAge is how stale the newest snapshot may be before the
	// freshness check fails.
	maxSnapshotAge = 2 * time.Hour

	// minBookmakers is the coverage floor for the bookmaker check.
	minBookmakers = 3
)

// Store is the slice of storage the checker reads.
type Store interface {
	LatestSnapshotTime(ctx context.Context) (time.Time, error)
	CountGames(ctx context.Context) (int, error)
	CountUpcomingGames(ctx context.Context, now time.Time) (int, error)
	DistinctBookmakers(ctx context.Context) ([]string, error)
}

// Check is one named data-quality check outcome.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Report bundles all check outcomes.
type Report struct {
	Checks  []Check `json:"checks"`
	Healthy bool    `json:"healthy"`
}

// Checker verifies the ingestion pipeline is producing usable data.
type Checker struct {
	store  Store
	logger *zap.Logger
}

// NewChecker creates a data-quality checker.
func NewChecker(store Store, logger *zap.Logger) *Checker {
	return &Checker{store: store, logger: logger}
}

// Run executes every check. Storage errors fail the affected check
// rather than aborting, so one broken query still yields a full report.
func (c *Checker) Run(ctx context.Context) *Report {
	report := &Report{Healthy: true}

	for _, check := range []Check{
		c.checkFreshness(ctx),
		c.checkGameCount(ctx),
		c.checkBookmakerCoverage(ctx),
	} {
		report.Checks = append(report.Checks, check)
		if !check.Passed {
			report.Healthy = false
		}
	}

	c.logger.Info("health-checks-complete", zap.Bool("healthy", report.Healthy))
	return report
}

// checkFreshness verifies snapshots are still being collected.
func (c *Checker) checkFreshness(ctx context.Context) Check {
	check := Check{Name: "data_freshness"}

	latest, err := c.store.LatestSnapshotTime(ctx)
	if errors.Is(err, types.ErrNotFound) {
		check.Detail = "no odds snapshots stored"
		return check
	}
	if err != nil {
		check.Detail = err.Error()
		return check
	}

	age := time.Since(latest)
	check.Detail = fmt.Sprintf("newest snapshot is %s old", age.Round(time.Minute))
	check.Passed = age <= maxSnapshotAge
	return check
}

// checkGameCount verifies upcoming games exist to scan.
func (c *Checker) checkGameCount(ctx context.Context) Check {
	check := Check{Name: "game_count"}

	total, err := c.store.CountGames(ctx)
	if err != nil {
		check.Detail = err.Error()
		return check
	}
	upcoming, err := c.store.CountUpcomingGames(ctx, time.Now().UTC())
	if err != nil {
		check.Detail = err.Error()
		return check
	}

	check.Passed = upcoming > 0
	check.Detail = fmt.Sprintf("total %d, upcoming %d", total, upcoming)
	return check
}

// checkBookmakerCoverage verifies odds arrive from enough distinct books.
func (c *Checker) checkBookmakerCoverage(ctx context.Context) Check {
	check := Check{Name: "bookmaker_coverage"}

	books, err := c.store.DistinctBookmakers(ctx)
	if err != nil {
		check.Detail = err.Error()
		return check
	}

	check.Passed = len(books) >= minBookmakers
	check.Detail = fmt.Sprintf("%d distinct bookmakers", len(books))
	return check
}
