package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nmartinez/oddsedge/internal/feed"
	"github.com/nmartinez/oddsedge/internal/storage"
	"github.com/nmartinez/oddsedge/pkg/cache"
	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

// gameCacheTTL bounds how long an external-id lookup stays warm between
// polling cycles.
const gameCacheTTL = time.Hour

// Feed fetches upcoming events with their bookmaker quotes.
type Feed interface {
	FetchUpcomingOdds(ctx context.Context, sport string, horizon time.Duration) ([]feed.Event, error)
}

// Config holds ingestion configuration.
type Config struct {
	Bookmakers []string // allow-list, sharp and soft combined
	Horizon    time.Duration
	Logger     *zap.Logger
}

// Service normalizes raw feed events into stored games and odds
// snapshots. One Ingest call is one feed request.
type Service struct {
	feed   Feed
	store  storage.Store
	games  cache.Cache
	config Config
	logger *zap.Logger
}

// NewService creates an ingestion service. games caches external-id to
// game lookups so repeated polls skip the upsert round-trip.
func NewService(cfg Config, f Feed, store storage.Store, games cache.Cache) *Service {
	return &Service{
		feed:   f,
		store:  store,
		games:  games,
		config: cfg,
		logger: cfg.Logger,
	}
}

// Ingest runs one ingestion pass for a sport and returns the number of
// snapshots written. A whole-feed failure aborts the pass with zero work
// done; a malformed event or bookmaker block only skips itself.
func (s *Service) Ingest(ctx context.Context, sport string) (int, error) {
	start := time.Now()

	events, err := s.feed.FetchUpcomingOdds(ctx, sport, s.config.Horizon)
	if err != nil {
		s.logger.Error("ingestion-feed-failed",
			zap.String("sport", sport),
			zap.Error(err))
		return 0, err
	}

	allowed := make(map[string]bool, len(s.config.Bookmakers))
	for _, b := range s.config.Bookmakers {
		allowed[b] = true
	}

	snapshotTime := time.Now().UTC()
	written := 0

	for i := range events {
		event := &events[i]

		n, err := s.ingestEvent(ctx, sport, event, allowed, snapshotTime)
		if err != nil {
			// One broken event must not abort the batch.
			EventsSkippedTotal.WithLabelValues("event_failed").Inc()
			s.logger.Warn("event-ingestion-failed",
				zap.String("external-id", event.ID),
				zap.Error(err))
			continue
		}
		written += n
	}

	IngestDurationSeconds.Observe(time.Since(start).Seconds())
	SnapshotsWrittenTotal.Add(float64(written))

	s.logger.Info("ingestion-complete",
		zap.String("sport", sport),
		zap.Int("events", len(events)),
		zap.Int("snapshots-written", written))

	return written, nil
}

// ingestEvent upserts the game and writes one snapshot per allow-listed
// bookmaker block, all inside a single transaction.
func (s *Service) ingestEvent(ctx context.Context, sport string, event *feed.Event, allowed map[string]bool, snapshotTime time.Time) (int, error) {
	if event.ID == "" || event.HomeTeam == "" || event.AwayTeam == "" {
		EventsSkippedTotal.WithLabelValues("missing_fields").Inc()
		s.logger.Debug("event-missing-required-fields", zap.String("external-id", event.ID))
		return 0, nil
	}

	commence, err := time.Parse(time.RFC3339, event.CommenceTime)
	if err != nil {
		EventsSkippedTotal.WithLabelValues("bad_commence_time").Inc()
		s.logger.Debug("event-bad-commence-time",
			zap.String("external-id", event.ID),
			zap.String("commence-time", event.CommenceTime))
		return 0, nil
	}

	written := 0
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		game, err := s.resolveGame(ctx, tx, sport, event, commence)
		if err != nil {
			return err
		}

		for j := range event.Bookmakers {
			block := &event.Bookmakers[j]
			if !allowed[block.Key] {
				continue
			}

			snap, ok := s.snapshotFromBlock(game.ID, block, event, snapshotTime)
			if !ok {
				continue
			}

			err = tx.InsertSnapshot(ctx, snap)
			if errors.Is(err, types.ErrDuplicateSnapshot) {
				SnapshotsSkippedTotal.WithLabelValues("duplicate").Inc()
				continue
			}
			if err != nil {
				return err
			}
			written++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ingest event %s: %w", event.ID, err)
	}

	EventsProcessedTotal.Inc()
	return written, nil
}

// resolveGame returns the stored game for the event, via the lookaside
// cache when warm. Upserting is idempotent on the external identifier so
// a stale cache miss never creates a second row.
func (s *Service) resolveGame(ctx context.Context, tx storage.Store, sport string, event *feed.Event, commence time.Time) (*types.Game, error) {
	if v, ok := s.games.Get(event.ID); ok {
		if g, ok := v.(*types.Game); ok {
			return g, nil
		}
	}

	league := event.SportKey
	if league == "" {
		league = sport
	}

	game, err := tx.UpsertGame(ctx, &types.Game{
		ExternalID:   event.ID,
		League:       league,
		HomeTeam:     event.HomeTeam,
		AwayTeam:     event.AwayTeam,
		CommenceTime: commence,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert game: %w", err)
	}

	s.games.Set(event.ID, game, gameCacheTTL)
	return game, nil
}

// snapshotFromBlock extracts the head-to-head prices of one bookmaker
// block. A block missing the h2h market, or quoting a missing or
// non-positive home or away price, is not storable.
func (s *Service) snapshotFromBlock(gameID int64, block *feed.Bookmaker, event *feed.Event, snapshotTime time.Time) (*types.OddsSnapshot, bool) {
	h2h, ok := block.H2H()
	if !ok {
		SnapshotsSkippedTotal.WithLabelValues("no_h2h_market").Inc()
		return nil, false
	}

	homeOdds, homeOK := h2h.PriceFor(event.HomeTeam)
	awayOdds, awayOK := h2h.PriceFor(event.AwayTeam)
	if !homeOK || !awayOK || homeOdds <= 0 || awayOdds <= 0 {
		SnapshotsSkippedTotal.WithLabelValues("partial_quote").Inc()
		s.logger.Debug("bookmaker-block-partial-quote",
			zap.String("external-id", event.ID),
			zap.String("bookmaker", block.Key))
		return nil, false
	}

	var drawOdds *float64
	if price, ok := h2h.PriceFor("Draw"); ok && price > 0 {
		drawOdds = &price
	}

	return types.NewOddsSnapshot(gameID, block.Key, homeOdds, awayOdds, drawOdds, snapshotTime), true
}
