package types

import "time"

// OddsSnapshot is one bookmaker's quoted prices for one game at one point
// in time. Snapshots are append-only: they are never mutated or deleted,
// only superseded by newer snapshots with later timestamps.
type OddsSnapshot struct {
	ID           int64
	GameID       int64
	Bookmaker    string // e.g. "pinnacle", "draftkings"
	HomeOdds     float64
	AwayOdds     float64
	DrawOdds     *float64 // nil for two-way markets
	HomeImplied  float64  // always 1/HomeOdds, recomputed at write time
	AwayImplied  float64
	DrawImplied  *float64
	SnapshotTime time.Time
	CreatedAt    time.Time
}

// NewOddsSnapshot builds a snapshot from decimal prices, recomputing the
// implied probabilities. Prices must be positive; ingestion rejects
// non-positive prices before calling this.
func NewOddsSnapshot(gameID int64, bookmaker string, homeOdds, awayOdds float64, drawOdds *float64, at time.Time) *OddsSnapshot {
	s := &OddsSnapshot{
		GameID:       gameID,
		Bookmaker:    bookmaker,
		HomeOdds:     homeOdds,
		AwayOdds:     awayOdds,
		DrawOdds:     drawOdds,
		HomeImplied:  1.0 / homeOdds,
		AwayImplied:  1.0 / awayOdds,
		SnapshotTime: at,
	}

	if drawOdds != nil && *drawOdds > 0 {
		implied := 1.0 / *drawOdds
		s.DrawImplied = &implied
	}

	return s
}

// HasDraw reports whether the snapshot carries a draw price.
func (s *OddsSnapshot) HasDraw() bool {
	return s.DrawImplied != nil
}
