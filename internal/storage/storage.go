package storage

import (
	"context"
	"time"

	"github.com/nmartinez/oddsedge/pkg/types"
)

// Store is the storage boundary for games, odds snapshots, value bets and
// bet results. Implementations must make each method atomic; multi-step
// work is grouped with InTx.
type Store interface {
	// InTx runs fn against a transaction-scoped store. The transaction is
	// committed when fn returns nil and rolled back otherwise, including
	// on panic paths.
	InTx(ctx context.Context, fn func(Store) error) error

	// UpsertGame creates the game on first sighting or reuses the
	// existing row for the same external identifier. Never re-creates.
	UpsertGame(ctx context.Context, g *types.Game) (*types.Game, error)
	GameByExternalID(ctx context.Context, externalID string) (*types.Game, error)
	// OpenGames returns games with no result and a start time after now.
	OpenGames(ctx context.Context, now time.Time) ([]types.Game, error)
	// SettledGames returns games with a recorded result in [from, to],
	// oldest first. league filters when non-empty.
	SettledGames(ctx context.Context, league string, from, to time.Time) ([]types.Game, error)

	// InsertSnapshot appends an odds snapshot. A collision on
	// (game, bookmaker, snapshot time) returns types.ErrDuplicateSnapshot.
	InsertSnapshot(ctx context.Context, s *types.OddsSnapshot) error
	// SnapshotsByGame returns all snapshots for the game restricted to
	// the given bookmaker set (all bookmakers when empty), newest first.
	SnapshotsByGame(ctx context.Context, gameID int64, bookmakers []string) ([]types.OddsSnapshot, error)

	InsertValueBet(ctx context.Context, v *types.ValueBet) error
	RecentValueBets(ctx context.Context, limit int) ([]types.ValueBet, error)

	InsertBetResult(ctx context.Context, b *types.BetResult) (*types.BetResult, error)
	BetResultByID(ctx context.Context, id int64) (*types.BetResult, error)
	UpdateBetResult(ctx context.Context, b *types.BetResult) error
	SettledBetResults(ctx context.Context) ([]types.BetResult, error)

	// Health queries.
	LatestSnapshotTime(ctx context.Context) (time.Time, error)
	CountGames(ctx context.Context) (int, error)
	CountUpcomingGames(ctx context.Context, now time.Time) (int, error)
	DistinctBookmakers(ctx context.Context) ([]string, error)

	Close() error
}
