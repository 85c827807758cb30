package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/nmartinez/oddsedge/pkg/kelly"
	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

// Store is the slice of storage the backtester reads.
type Store interface {
	SettledGames(ctx context.Context, league string, from, to time.Time) ([]types.Game, error)
	SnapshotsByGame(ctx context.Context, gameID int64, bookmakers []string) ([]types.OddsSnapshot, error)
}

// Config holds backtest configuration.
type Config struct {
	SharpBooks      []string
	SoftBooks       []string
	MinEdgePercent  float64
	KellyFraction   float64
	MaxBetPercent   float64
	InitialBankroll float64
	Logger          *zap.Logger
}

// SimulatedBet is one bet the strategy would have placed.
type SimulatedBet struct {
	Game        string
	Selection   string
	Odds        float64
	Stake       float64
	EdgePercent float64
	Won         bool
	PnL         float64
	Bankroll    float64 // running bankroll after this bet
}

// Result is the outcome of one backtest run.
type Result struct {
	Bets            []SimulatedBet
	TotalBets       int
	Wins            int
	Losses          int
	WinRate         float64
	TotalStaked     float64
	TotalPnL        float64
	ROI             float64
	InitialBankroll float64
	FinalBankroll   float64
}

// Backtester replays the soft-vs-sharp strategy over settled games with a
// running Kelly-sized bankroll.
type Backtester struct {
	store  Store
	config Config
	logger *zap.Logger
}

// New creates a backtester.
func New(cfg Config, store Store) *Backtester {
	return &Backtester{store: store, config: cfg, logger: cfg.Logger}
}

// Run simulates the strategy over every settled game in the window,
// oldest first. Each flagged edge is bet with the running bankroll and
// settled against the game's recorded result.
func (b *Backtester) Run(ctx context.Context, league string, from, to time.Time) (*Result, error) {
	games, err := b.store.SettledGames(ctx, league, from, to)
	if err != nil {
		return nil, fmt.Errorf("load settled games: %w", err)
	}

	b.logger.Info("backtest-starting",
		zap.String("league", league),
		zap.Int("settled-games", len(games)),
		zap.Float64("initial-bankroll", b.config.InitialBankroll))

	result := &Result{
		InitialBankroll: b.config.InitialBankroll,
		FinalBankroll:   b.config.InitialBankroll,
	}

	for i := range games {
		if err := b.simulateGame(ctx, &games[i], result); err != nil {
			return nil, err
		}
	}

	result.TotalBets = len(result.Bets)
	if result.TotalBets > 0 {
		result.WinRate = float64(result.Wins) / float64(result.TotalBets) * 100
	}
	if result.TotalStaked > 0 {
		result.ROI = result.TotalPnL / result.TotalStaked * 100
	}

	b.logger.Info("backtest-complete",
		zap.Int("bets", result.TotalBets),
		zap.Float64("win-rate", result.WinRate),
		zap.Float64("roi", result.ROI),
		zap.Float64("final-bankroll", result.FinalBankroll))

	return result, nil
}

func (b *Backtester) simulateGame(ctx context.Context, game *types.Game, result *Result) error {
	sharp, err := b.store.SnapshotsByGame(ctx, game.ID, b.config.SharpBooks)
	if err != nil {
		return fmt.Errorf("sharp snapshots for game %d: %w", game.ID, err)
	}
	soft, err := b.store.SnapshotsByGame(ctx, game.ID, b.config.SoftBooks)
	if err != nil {
		return fmt.Errorf("soft snapshots for game %d: %w", game.ID, err)
	}
	if len(sharp) == 0 || len(soft) == 0 {
		return nil
	}

	var homeSum, awaySum float64
	for _, s := range sharp {
		homeSum += s.HomeImplied
		awaySum += s.AwayImplied
	}
	homeProb := homeSum / float64(len(sharp))
	awayProb := awaySum / float64(len(sharp))

	for _, snap := range soft {
		b.simulateSide(game, result, types.SelectionHome, homeProb, snap.HomeOdds, game.Result == types.ResultHome)
		b.simulateSide(game, result, types.SelectionAway, awayProb, snap.AwayOdds, game.Result == types.ResultAway)
	}

	return nil
}

func (b *Backtester) simulateSide(game *types.Game, result *Result, selection string, winProb, offeredOdds float64, won bool) {
	fairOdds := 1.0 / winProb
	edge := (offeredOdds/fairOdds - 1) * 100
	if edge < b.config.MinEdgePercent {
		return
	}

	stake := kelly.Stake(winProb, offeredOdds,
		result.FinalBankroll, b.config.KellyFraction, b.config.MaxBetPercent)
	if stake <= 0 {
		return
	}

	var pnl float64
	if won {
		pnl = stake * (offeredOdds - 1)
		result.Wins++
	} else {
		pnl = -stake
		result.Losses++
	}

	result.FinalBankroll += pnl
	result.TotalStaked += stake
	result.TotalPnL += pnl

	result.Bets = append(result.Bets, SimulatedBet{
		Game:        game.HomeTeam + " vs " + game.AwayTeam,
		Selection:   selection,
		Odds:        offeredOdds,
		Stake:       stake,
		EdgePercent: edge,
		Won:         won,
		PnL:         pnl,
		Bankroll:    result.FinalBankroll,
	})
}

// Print writes a human-readable report to stdout.
func (r *Result) Print() {
	line := "============================================================"

	fmt.Println("\n" + line)
	fmt.Println("📊 BACKTEST REPORT")
	fmt.Println(line)
	if r.TotalBets == 0 {
		fmt.Println("No bets placed in backtest")
		fmt.Println(line)
		return
	}
	fmt.Printf("Total Bets: %d\n", r.TotalBets)
	fmt.Printf("Wins: %d | Losses: %d\n", r.Wins, r.Losses)
	fmt.Printf("Win Rate: %.1f%%\n", r.WinRate)
	fmt.Printf("Total Staked: $%.2f\n", r.TotalStaked)
	fmt.Printf("Total P&L: $%.2f\n", r.TotalPnL)
	fmt.Printf("ROI: %.2f%%\n", r.ROI)
	fmt.Printf("Starting Bankroll: $%.2f\n", r.InitialBankroll)
	fmt.Printf("Ending Bankroll: $%.2f\n", r.FinalBankroll)
	fmt.Println(line)
}
