package market

import (
	"context"
	"fmt"
	"time"

	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

// Consensus modes reported alongside the aggregated probabilities.
const (
	ModeSharp = "sharp"
	ModeAll   = "all"
)

// SnapshotSource is the slice of storage the analyzer reads.
type SnapshotSource interface {
	SnapshotsByGame(ctx context.Context, gameID int64, bookmakers []string) ([]types.OddsSnapshot, error)
}

// Consensus is the averaged market view of one game. Probabilities are raw
// mean implied probabilities over the contributing snapshots; callers that
// want the margin stripped run RemoveVig on them.
type Consensus struct {
	HomeProb      float64
	AwayProb      float64
	DrawProb      *float64
	SnapshotCount int
	Mode          string
}

// Config holds analyzer configuration.
type Config struct {
	SharpBooks []string
	SoftBooks  []string
	Logger     *zap.Logger
}

// Engine aggregates stored odds snapshots into consensus estimates and
// flags soft-book prices that drift from them.
type Engine struct {
	source SnapshotSource
	config Config
	logger *zap.Logger
}

// NewEngine creates a market analysis engine.
func NewEngine(cfg Config, source SnapshotSource) *Engine {
	return &Engine{
		source: source,
		config: cfg,
		logger: cfg.Logger,
	}
}

// Consensus averages implied probabilities over every stored sharp-book
// snapshot for the game. Returns types.ErrNoConsensus when no sharp
// snapshot exists; that is an absent market view, not a zero probability.
func (e *Engine) Consensus(ctx context.Context, gameID int64) (*Consensus, error) {
	return e.consensus(ctx, gameID, e.config.SharpBooks, ModeSharp)
}

// ConsensusAllBooks averages over every stored snapshot regardless of
// bookmaker. Diagnostic mode; value detection always uses Consensus.
func (e *Engine) ConsensusAllBooks(ctx context.Context, gameID int64) (*Consensus, error) {
	return e.consensus(ctx, gameID, nil, ModeAll)
}

func (e *Engine) consensus(ctx context.Context, gameID int64, bookmakers []string, mode string) (*Consensus, error) {
	start := time.Now()

	snapshots, err := e.source.SnapshotsByGame(ctx, gameID, bookmakers)
	if err != nil {
		return nil, fmt.Errorf("load snapshots for game %d: %w", gameID, err)
	}

	if len(snapshots) == 0 {
		ConsensusRequestsTotal.WithLabelValues(mode, "no_data").Inc()
		e.logger.Debug("no-consensus-data",
			zap.Int64("game-id", gameID),
			zap.String("mode", mode))
		return nil, types.ErrNoConsensus
	}

	var homeSum, awaySum float64
	var drawSum float64
	var drawCount int

	for _, s := range snapshots {
		homeSum += s.HomeImplied
		awaySum += s.AwayImplied
		if s.DrawImplied != nil {
			drawSum += *s.DrawImplied
			drawCount++
		}
	}

	n := float64(len(snapshots))
	c := &Consensus{
		HomeProb:      homeSum / n,
		AwayProb:      awaySum / n,
		SnapshotCount: len(snapshots),
		Mode:          mode,
	}

	// A draw estimate only exists when the market actually quotes draws;
	// it is averaged over the snapshots that carry one.
	if drawCount > 0 {
		draw := drawSum / float64(drawCount)
		c.DrawProb = &draw
	}

	ConsensusRequestsTotal.WithLabelValues(mode, "ok").Inc()
	ConsensusDurationSeconds.Observe(time.Since(start).Seconds())

	return c, nil
}

// ProbabilityFor returns the consensus probability for a selection
// constant, or false when the selection is not priced.
func (c *Consensus) ProbabilityFor(selection string) (float64, bool) {
	switch selection {
	case types.SelectionHome:
		return c.HomeProb, true
	case types.SelectionAway:
		return c.AwayProb, true
	case types.SelectionDraw:
		if c.DrawProb == nil {
			return 0, false
		}
		return *c.DrawProb, true
	}
	return 0, false
}
