package market

import (
	"context"
	"errors"

	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

// Discrepancy is one soft-book price paying above the consensus fair
// price for an outcome.
type Discrepancy struct {
	Bookmaker     string
	Selection     string
	OfferedOdds   float64
	FairOdds      float64
	EdgePercent   float64
	SoftImplied   float64
	ConsensusProb float64
}

// Discrepancies compares every soft-book snapshot of the game against the
// sharp consensus and returns each (bookmaker, outcome) pair whose offered
// price clears minEdgePercent. No ordering or deduplication is applied.
// An absent consensus yields an empty list, not an error.
func (e *Engine) Discrepancies(ctx context.Context, gameID int64, minEdgePercent float64) ([]Discrepancy, error) {
	consensus, err := e.Consensus(ctx, gameID)
	if err != nil {
		if errors.Is(err, types.ErrNoConsensus) {
			return nil, nil
		}
		return nil, err
	}

	softSnaps, err := e.source.SnapshotsByGame(ctx, gameID, e.config.SoftBooks)
	if err != nil {
		return nil, err
	}

	var out []Discrepancy
	for _, snap := range softSnaps {
		out = e.appendEdge(out, consensus.HomeProb, types.SelectionHome,
			snap.Bookmaker, snap.HomeOdds, snap.HomeImplied, minEdgePercent)

		out = e.appendEdge(out, consensus.AwayProb, types.SelectionAway,
			snap.Bookmaker, snap.AwayOdds, snap.AwayImplied, minEdgePercent)

		// The draw side is comparable only when both the soft book and
		// the sharp consensus price it.
		if snap.HasDraw() && consensus.DrawProb != nil {
			out = e.appendEdge(out, *consensus.DrawProb, types.SelectionDraw,
				snap.Bookmaker, *snap.DrawOdds, *snap.DrawImplied, minEdgePercent)
		}
	}

	if len(out) > 0 {
		e.logger.Info("soft-book-discrepancies-found",
			zap.Int64("game-id", gameID),
			zap.Int("count", len(out)))
	}

	return out, nil
}

func (e *Engine) appendEdge(out []Discrepancy, consensusProb float64, selection,
	bookmaker string, offeredOdds, softImplied, minEdgePercent float64) []Discrepancy {

	fairOdds := 1.0 / consensusProb
	edge := (offeredOdds/fairOdds - 1) * 100

	EdgePercentObserved.Observe(edge)

	if edge < minEdgePercent {
		return out
	}

	DiscrepanciesFlaggedTotal.WithLabelValues(bookmaker, selection).Inc()

	return append(out, Discrepancy{
		Bookmaker:     bookmaker,
		Selection:     selection,
		OfferedOdds:   offeredOdds,
		FairOdds:      fairOdds,
		EdgePercent:   edge,
		SoftImplied:   softImplied,
		ConsensusProb: consensusProb,
	})
}
