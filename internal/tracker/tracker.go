package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

// Store is the slice of storage the tracker needs.
type Store interface {
	InsertBetResult(ctx context.Context, b *types.BetResult) (*types.BetResult, error)
	BetResultByID(ctx context.Context, id int64) (*types.BetResult, error)
	UpdateBetResult(ctx context.Context, b *types.BetResult) error
	SettledBetResults(ctx context.Context) ([]types.BetResult, error)
}

// Tracker records placed bets and settles their outcomes.
type Tracker struct {
	store  Store
	logger *zap.Logger
}

// New creates a bet tracker.
func New(store Store, logger *zap.Logger) *Tracker {
	return &Tracker{store: store, logger: logger}
}

// RecordBet stores a bet actually placed against a detected value bet.
func (t *Tracker) RecordBet(ctx context.Context, valueBetID, bookmaker, selection string, odds, stake float64) (*types.BetResult, error) {
	if odds <= 1 {
		return nil, fmt.Errorf("odds %v imply no possible gain", odds)
	}
	if stake <= 0 {
		return nil, fmt.Errorf("stake %v must be positive", stake)
	}

	bet, err := t.store.InsertBetResult(ctx, &types.BetResult{
		ValueBetID: valueBetID,
		Bookmaker:  bookmaker,
		Selection:  selection,
		OddsAtBet:  odds,
		Stake:      stake,
		PlacedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("record bet: %w", err)
	}

	t.logger.Info("bet-recorded",
		zap.Int64("bet-id", bet.ID),
		zap.String("value-bet-id", valueBetID),
		zap.String("selection", selection),
		zap.Float64("odds", odds),
		zap.Float64("stake", stake))

	return bet, nil
}

// SettleBet marks a bet won, lost or void and computes its PnL. When
// closingOdds is supplied the closing line value is recorded as well:
// CLV% = (closing/placed - 1) x 100, positive when the bet beat the close.
func (t *Tracker) SettleBet(ctx context.Context, betID int64, result string, closingOdds *float64) (*types.BetResult, error) {
	if result != types.BetWin && result != types.BetLoss && result != types.BetVoid {
		return nil, fmt.Errorf("unknown bet result %q", result)
	}

	bet, err := t.store.BetResultByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("load bet %d: %w", betID, err)
	}

	switch result {
	case types.BetWin:
		bet.PnL = bet.Stake * (bet.OddsAtBet - 1)
	case types.BetLoss:
		bet.PnL = -bet.Stake
	case types.BetVoid:
		bet.PnL = 0
	}

	if closingOdds != nil && *closingOdds > 0 {
		clv := (*closingOdds/bet.OddsAtBet - 1) * 100
		bet.ClosingLine = &clv
	}

	now := time.Now().UTC()
	bet.Result = result
	bet.SettledAt = &now

	if err := t.store.UpdateBetResult(ctx, bet); err != nil {
		return nil, fmt.Errorf("settle bet %d: %w", betID, err)
	}

	BetsSettledTotal.WithLabelValues(result).Inc()
	BetPnLUSD.Observe(bet.PnL)

	t.logger.Info("bet-settled",
		zap.Int64("bet-id", bet.ID),
		zap.String("result", result),
		zap.Float64("pnl", bet.PnL))

	return bet, nil
}

// Report aggregates outcomes over all settled bets.
type Report struct {
	TotalBets   int
	Wins        int
	Losses      int
	Voids       int
	WinRate     float64 // percent of all settled bets
	TotalStaked float64
	TotalPnL    float64
	ROI         float64 // percent of total staked
	AvgCLV      float64 // percent, over bets with a recorded closing line
}

// PerformanceReport summarizes every settled bet. Returns nil when no
// bet has been settled yet.
func (t *Tracker) PerformanceReport(ctx context.Context) (*Report, error) {
	bets, err := t.store.SettledBetResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settled bets: %w", err)
	}

	if len(bets) == 0 {
		return nil, nil
	}

	r := &Report{TotalBets: len(bets)}
	var clvSum float64
	var clvCount int

	for _, b := range bets {
		switch b.Result {
		case types.BetWin:
			r.Wins++
		case types.BetLoss:
			r.Losses++
		case types.BetVoid:
			r.Voids++
		}
		r.TotalStaked += b.Stake
		r.TotalPnL += b.PnL
		if b.ClosingLine != nil {
			clvSum += *b.ClosingLine
			clvCount++
		}
	}

	r.WinRate = float64(r.Wins) / float64(r.TotalBets) * 100
	if r.TotalStaked > 0 {
		r.ROI = r.TotalPnL / r.TotalStaked * 100
	}
	if clvCount > 0 {
		r.AvgCLV = clvSum / float64(clvCount)
	}

	return r, nil
}
