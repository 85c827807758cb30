package types

import "errors"

// Sentinel errors for the failure categories callers need to tell apart:
// a feed that could not be reached, a write that collided with an
// existing snapshot, and a game with no sharp data to aggregate.
var (
	// ErrFeedUnavailable wraps network or HTTP failures against the odds
	// feed. Ingestion returns zero work done for the whole call.
	ErrFeedUnavailable = errors.New("odds feed unavailable")

	// ErrDuplicateSnapshot marks a snapshot insert that collided with an
	// already-stored (game, bookmaker, snapshot time) row. Benign; callers
	// skip and continue.
	ErrDuplicateSnapshot = errors.New("duplicate odds snapshot")

	// ErrNoConsensus means no sharp-bookmaker snapshots exist for a game.
	// This is an explicit absent state, not a zero-value probability.
	ErrNoConsensus = errors.New("no sharp snapshots for consensus")

	// ErrNotFound is returned by storage lookups that match no row.
	ErrNotFound = errors.New("not found")
)
