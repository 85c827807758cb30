package app

import (
	"context"
	"testing"
	"time"

	"github.com/nmartinez/oddsedge/internal/feed"
	"github.com/nmartinez/oddsedge/internal/ingest"
	"github.com/nmartinez/oddsedge/internal/market"
	"github.com/nmartinez/oddsedge/internal/testutil"
	"github.com/nmartinez/oddsedge/internal/value"
	"github.com/nmartinez/oddsedge/pkg/config"
	"go.uber.org/zap"
)

type stubFeed struct {
	events []feed.Event
	err    error
}

func (s *stubFeed) FetchUpcomingOdds(context.Context, string, time.Duration) ([]feed.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

// newCycleApp wires a minimal App around in-memory storage and a canned feed.
func newCycleApp(t *testing.T, f *stubFeed) (*App, *testutil.MemStore) {
	t.Helper()

	logger := zap.NewNop()
	store := testutil.NewMemStore()

	cfg := &config.Config{
		Sports:          []string{"basketball_nba"},
		PollInterval:    time.Hour,
		SharpBooks:      []string{"pinnacle", "betfair"},
		SoftBooks:       []string{"draftkings", "fanduel"},
		MinEdgePercent:  5.0,
		MinProbability:  0.35,
		KellyFraction:   0.25,
		DefaultBankroll: 1000,
		MaxBetPercent:   0.05,
	}

	ingester := ingest.NewService(ingest.Config{
		Bookmakers: cfg.AllBooks(),
		Horizon:    24 * time.Hour,
		Logger:     logger,
	}, f, store, testutil.NewMemCache())

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

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		ingester: ingester,
		engine:   engine,
		scanner:  scanner,
		sports:   cfg.Sports,
		ctx:      ctx,
		cancel:   cancel,
	}, store
}

func TestRunCycle_IngestsAndFlagsValue(t *testing.T) {
	// One sharp book says 60% home; DraftKings offers 1.80 on home,
	// an 8% edge over the 1.667 fair price.
	event := testutil.NBAEvent("evt-1", "pinnacle", 1.0/0.60, 1.0/0.40)
	event.Bookmakers = append(event.Bookmakers,
		testutil.H2HBlock("draftkings", "Boston Celtics", 1.80, "Miami Heat", 2.20))

	a, store := newCycleApp(t, &stubFeed{events: []feed.Event{event}})

	a.runCycle()

	if got := len(store.Snapshots()); got != 2 {
		t.Fatalf("Stored %d snapshots, want 2", got)
	}

	bets := store.ValueBets()
	if len(bets) != 1 {
		t.Fatalf("Flagged %d value bets, want 1", len(bets))
	}
	if bets[0].Bookmaker != "draftkings" {
		t.Errorf("Bookmaker = %q, want draftkings", bets[0].Bookmaker)
	}
	if bets[0].Selection != "Home" {
		t.Errorf("Selection = %q, want Home", bets[0].Selection)
	}
}

func TestRunCycle_FeedFailureCompletes(t *testing.T) {
	a, store := newCycleApp(t, &stubFeed{err: context.DeadlineExceeded})

	// Cycle must complete despite the feed being down.
	a.runCycle()

	if got := len(store.ValueBets()); got != 0 {
		t.Fatalf("Flagged %d value bets with no data, want 0", got)
	}
}

func TestRunCycle_NoEdgeNoBets(t *testing.T) {
	// Soft book prices the game exactly at the sharp consensus.
	event := testutil.NBAEvent("evt-2", "pinnacle", 2.0, 2.0)
	event.Bookmakers = append(event.Bookmakers,
		testutil.H2HBlock("fanduel", "Boston Celtics", 2.0, "Miami Heat", 2.0))

	a, store := newCycleApp(t, &stubFeed{events: []feed.Event{event}})

	a.runCycle()

	if got := len(store.ValueBets()); got != 0 {
		t.Fatalf("Flagged %d value bets without an edge, want 0", got)
	}
}
