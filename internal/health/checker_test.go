package health

import (
	"context"
	"testing"
	"time"

	"github.com/nmartinez/oddsedge/internal/testutil"
	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

func newTestChecker(store Store) *Checker {
	logger, _ := zap.NewDevelopment()
	return NewChecker(store, logger)
}

func seedGameWithSnapshots(t *testing.T, store *testutil.MemStore, snapshotAge time.Duration, bookmakers ...string) {
	t.Helper()
	ctx := context.Background()

	game, err := store.UpsertGame(ctx, &types.Game{
		ExternalID:   "evt-1",
		League:       "basketball_nba",
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		CommenceTime: time.Now().Add(6 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed game: %v", err)
	}

	at := time.Now().Add(-snapshotAge)
	for _, b := range bookmakers {
		snap := types.NewOddsSnapshot(game.ID, b, 1.90, 2.05, nil, at)
		if err := store.InsertSnapshot(ctx, snap); err != nil {
			t.Fatalf("seed snapshot for %s: %v", b, err)
		}
	}
}

func checkByName(t *testing.T, report *Report, name string) Check {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q missing from report", name)
	return Check{}
}

func TestChecker_Run_AllHealthy(t *testing.T) {
	store := testutil.NewMemStore()
	seedGameWithSnapshots(t, store, 10*time.Minute, "pinnacle", "betfair", "draftkings")

	report := newTestChecker(store).Run(context.Background())

	if !report.Healthy {
		t.Errorf("expected healthy report, got %+v", report)
	}
	for _, c := range report.Checks {
		if !c.Passed {
			t.Errorf("check %s failed: %s", c.Name, c.Detail)
		}
	}
}

func TestChecker_Run_EmptyDatabase(t *testing.T) {
	store := testutil.NewMemStore()

	report := newTestChecker(store).Run(context.Background())

	if report.Healthy {
		t.Error("expected unhealthy report on an empty database")
	}
	if c := checkByName(t, report, "data_freshness"); c.Passed {
		t.Error("freshness check must fail without snapshots")
	}
	if c := checkByName(t, report, "game_count"); c.Passed {
		t.Error("game count check must fail without games")
	}
}

func TestChecker_Run_StaleData(t *testing.T) {
	store := testutil.NewMemStore()
	seedGameWithSnapshots(t, store, 3*time.Hour, "pinnacle", "betfair", "draftkings")

	report := newTestChecker(store).Run(context.Background())

	if report.Healthy {
		t.Error("expected unhealthy report with 3h old snapshots")
	}
	if c := checkByName(t, report, "data_freshness"); c.Passed {
		t.Error("freshness check must fail for snapshots older than 2h")
	}
	if c := checkByName(t, report, "bookmaker_coverage"); !c.Passed {
		t.Error("coverage check should still pass with 3 bookmakers")
	}
}

func TestChecker_Run_ThinBookmakerCoverage(t *testing.T) {
	store := testutil.NewMemStore()
	seedGameWithSnapshots(t, store, 10*time.Minute, "pinnacle", "draftkings")

	report := newTestChecker(store).Run(context.Background())

	if report.Healthy {
		t.Error("expected unhealthy report with only 2 bookmakers")
	}
	if c := checkByName(t, report, "bookmaker_coverage"); c.Passed {
		t.Error("coverage check must fail below 3 bookmakers")
	}
}

func TestChecker_Run_NoUpcomingGames(t *testing.T) {
	store := testutil.NewMemStore()
	ctx := context.Background()

	game, err := store.UpsertGame(ctx, &types.Game{
		ExternalID:   "evt-1",
		League:       "basketball_nba",
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		CommenceTime: time.Now().Add(-6 * time.Hour), // already started
	})
	if err != nil {
		t.Fatalf("seed game: %v", err)
	}
	for _, b := range []string{"pinnacle", "betfair", "draftkings"} {
		snap := types.NewOddsSnapshot(game.ID, b, 1.90, 2.05, nil, time.Now().Add(-10*time.Minute))
		if err := store.InsertSnapshot(ctx, snap); err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}

	report := newTestChecker(store).Run(ctx)

	if c := checkByName(t, report, "game_count"); c.Passed {
		t.Error("game count check must fail without future games")
	}
	if report.Healthy {
		t.Error("expected unhealthy report")
	}
}
