package value

import (
	"context"
	"fmt"
	"time"

	"github.com/nmartinez/oddsedge/internal/market"
	"github.com/nmartinez/oddsedge/internal/storage"
	"github.com/nmartinez/oddsedge/pkg/kelly"
	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

// Analyzer provides the market view the scanner decides on.
type Analyzer interface {
	Discrepancies(ctx context.Context, gameID int64, minEdgePercent float64) ([]market.Discrepancy, error)
}

// Store is the slice of storage the scanner needs.
type Store interface {
	InTx(ctx context.Context, fn func(storage.Store) error) error
	OpenGames(ctx context.Context, now time.Time) ([]types.Game, error)
}

// Config holds scanner configuration.
type Config struct {
	DefaultBankroll float64
	KellyFraction   float64
	MaxBetPercent   float64
	Logger          *zap.Logger
}

// Scanner walks every open game, flags soft-book prices beating the sharp
// consensus, sizes a stake for each and persists the result.
type Scanner struct {
	analyzer Analyzer
	store    Store
	config   Config
	logger   *zap.Logger
}

// NewScanner creates a value-bet scanner.
func NewScanner(cfg Config, analyzer Analyzer, store Store) *Scanner {
	return &Scanner{
		analyzer: analyzer,
		store:    store,
		config:   cfg,
		logger:   cfg.Logger,
	}
}

// Scan runs one detection pass over all unsettled future games and
// returns the value bets created this call. Games without a sharp
// consensus are skipped. The whole batch is persisted in one
// transaction: a scan commits every flagged bet or none of them.
// Re-running against unchanged snapshots re-flags the same
// opportunities as new rows; suppression of repeats is the caller's
// concern.
func (s *Scanner) Scan(ctx context.Context, minEdgePercent, minProbability float64) ([]types.ValueBet, error) {
	start := time.Now()
	ScansTotal.Inc()

	games, err := s.store.OpenGames(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("load open games: %w", err)
	}

	s.logger.Info("value-scan-starting",
		zap.Int("open-games", len(games)),
		zap.Float64("min-edge-percent", minEdgePercent),
		zap.Float64("min-probability", minProbability))

	var bets []types.ValueBet
	for i := range games {
		game := &games[i]

		discs, err := s.analyzer.Discrepancies(ctx, game.ID, minEdgePercent)
		if err != nil {
			return nil, fmt.Errorf("discrepancies for game %d: %w", game.ID, err)
		}

		for _, d := range discs {
			myProb := d.ConsensusProb
			if myProb < minProbability {
				// Thin-sample consensus; too little confidence to act on.
				ValueBetsSkippedTotal.WithLabelValues("low_probability").Inc()
				s.logger.Debug("value-bet-skipped-low-probability",
					zap.Int64("game-id", game.ID),
					zap.String("selection", d.Selection),
					zap.Float64("probability", myProb))
				continue
			}

			stake := kelly.Stake(myProb, d.OfferedOdds,
				s.config.DefaultBankroll, s.config.KellyFraction, s.config.MaxBetPercent)

			vb := types.NewValueBet(game, d.Selection, myProb, d.SoftImplied,
				d.OfferedOdds, d.Bookmaker, s.config.KellyFraction, stake)

			s.logger.Info("value-bet-detected",
				zap.String("value-bet-id", vb.ID),
				zap.String("game", game.HomeTeam+" vs "+game.AwayTeam),
				zap.String("selection", vb.Selection),
				zap.String("bookmaker", vb.Bookmaker),
				zap.Float64("offered-odds", vb.OfferedOdds),
				zap.Float64("edge-percent", vb.EdgePercent),
				zap.Float64("stake", vb.Stake))

			bets = append(bets, *vb)
		}
	}

	// One unit of work for the whole batch: a failed insert rolls back
	// every bet flagged this call.
	if len(bets) > 0 {
		err := s.store.InTx(ctx, func(tx storage.Store) error {
			for i := range bets {
				if err := tx.InsertValueBet(ctx, &bets[i]); err != nil {
					return fmt.Errorf("persist value bet for game %d: %w", bets[i].GameID, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		for i := range bets {
			ValueBetsDetectedTotal.Inc()
			ValueBetStakeUSD.Observe(bets[i].Stake)
		}
	}

	ScanDurationSeconds.Observe(time.Since(start).Seconds())
	s.logger.Info("value-scan-complete",
		zap.Int("games-scanned", len(games)),
		zap.Int("value-bets", len(bets)))

	return bets, nil
}
