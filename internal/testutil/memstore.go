package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nmartinez/oddsedge/internal/storage"
	"github.com/nmartinez/oddsedge/pkg/types"
)

// MemStore is an in-memory storage.Store for tests. It mirrors the
// Postgres semantics the code under test relies on: idempotent game
// upserts, the duplicate-snapshot constraint and bookmaker-set filtering.
type MemStore struct {
	mu sync.Mutex

	games       []types.Game
	snapshots   []types.OddsSnapshot
	valueBets   []types.ValueBet
	betResults  []types.BetResult
	nextGameID  int64
	nextSnapID  int64
	nextBetID   int64

	// FailWith, when set, is returned by mutating calls. FailAfter
	// lets that many mutating calls succeed first, so tests can fail
	// mid-batch.
	FailWith  error
	FailAfter int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextGameID: 1, nextSnapID: 1, nextBetID: 1}
}

// failNow reports whether the next mutating call should fail. Callers
// hold mu.
func (m *MemStore) failNow() bool {
	if m.FailWith == nil {
		return false
	}
	if m.FailAfter > 0 {
		m.FailAfter--
		return false
	}
	return true
}

// InTx applies fn atomically: on error every mutation made inside fn is
// rolled back, mirroring the Postgres transaction.
func (m *MemStore) InTx(_ context.Context, fn func(storage.Store) error) error {
	m.mu.Lock()
	snap := struct {
		games      []types.Game
		snapshots  []types.OddsSnapshot
		valueBets  []types.ValueBet
		betResults []types.BetResult
		nextGameID int64
		nextSnapID int64
		nextBetID  int64
	}{
		games:      append([]types.Game(nil), m.games...),
		snapshots:  append([]types.OddsSnapshot(nil), m.snapshots...),
		valueBets:  append([]types.ValueBet(nil), m.valueBets...),
		betResults: append([]types.BetResult(nil), m.betResults...),
		nextGameID: m.nextGameID,
		nextSnapID: m.nextSnapID,
		nextBetID:  m.nextBetID,
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.games = snap.games
		m.snapshots = snap.snapshots
		m.valueBets = snap.valueBets
		m.betResults = snap.betResults
		m.nextGameID = snap.nextGameID
		m.nextSnapID = snap.nextSnapID
		m.nextBetID = snap.nextBetID
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemStore) UpsertGame(_ context.Context, g *types.Game) (*types.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNow() {
		return nil, m.FailWith
	}

	for i := range m.games {
		if m.games[i].ExternalID == g.ExternalID {
			m.games[i].UpdatedAt = time.Now()
			stored := m.games[i]
			return &stored, nil
		}
	}

	stored := *g
	stored.ID = m.nextGameID
	m.nextGameID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.games = append(m.games, stored)

	out := stored
	return &out, nil
}

func (m *MemStore) GameByExternalID(_ context.Context, externalID string) (*types.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.games {
		if m.games[i].ExternalID == externalID {
			g := m.games[i]
			return &g, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *MemStore) OpenGames(_ context.Context, now time.Time) ([]types.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []types.Game
	for _, g := range m.games {
		if g.Result == "" && g.CommenceTime.After(now) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MemStore) SettledGames(_ context.Context, league string, from, to time.Time) ([]types.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []types.Game
	for _, g := range m.games {
		if g.Result == "" {
			continue
		}
		if g.CommenceTime.Before(from) || g.CommenceTime.After(to) {
			continue
		}
		if league != "" && g.League != league {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (m *MemStore) InsertSnapshot(_ context.Context, s *types.OddsSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNow() {
		return m.FailWith
	}

	for _, existing := range m.snapshots {
		if existing.GameID == s.GameID &&
			existing.Bookmaker == s.Bookmaker &&
			existing.SnapshotTime.Equal(s.SnapshotTime) {
			return types.ErrDuplicateSnapshot
		}
	}

	stored := *s
	stored.ID = m.nextSnapID
	m.nextSnapID++
	stored.CreatedAt = time.Now()
	m.snapshots = append(m.snapshots, stored)
	return nil
}

func (m *MemStore) SnapshotsByGame(_ context.Context, gameID int64, bookmakers []string) ([]types.OddsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := make(map[string]bool, len(bookmakers))
	for _, b := range bookmakers {
		allowed[b] = true
	}

	var out []types.OddsSnapshot
	for _, s := range m.snapshots {
		if s.GameID != gameID {
			continue
		}
		if len(bookmakers) > 0 && !allowed[s.Bookmaker] {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *MemStore) InsertValueBet(_ context.Context, v *types.ValueBet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNow() {
		return m.FailWith
	}

	m.valueBets = append(m.valueBets, *v)
	return nil
}

func (m *MemStore) RecentValueBets(_ context.Context, limit int) ([]types.ValueBet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.ValueBet, len(m.valueBets))
	copy(out, m.valueBets)

	// Newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) InsertBetResult(_ context.Context, b *types.BetResult) (*types.BetResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNow() {
		return nil, m.FailWith
	}

	stored := *b
	stored.ID = m.nextBetID
	m.nextBetID++
	m.betResults = append(m.betResults, stored)

	out := stored
	return &out, nil
}

func (m *MemStore) BetResultByID(_ context.Context, id int64) (*types.BetResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.betResults {
		if m.betResults[i].ID == id {
			b := m.betResults[i]
			return &b, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *MemStore) UpdateBetResult(_ context.Context, b *types.BetResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNow() {
		return m.FailWith
	}

	for i := range m.betResults {
		if m.betResults[i].ID == b.ID {
			m.betResults[i] = *b
			return nil
		}
	}
	return fmt.Errorf("bet result %d: %w", b.ID, types.ErrNotFound)
}

func (m *MemStore) SettledBetResults(_ context.Context) ([]types.BetResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []types.BetResult
	for _, b := range m.betResults {
		if b.Result != "" {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MemStore) LatestSnapshotTime(_ context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest time.Time
	for _, s := range m.snapshots {
		if s.SnapshotTime.After(latest) {
			latest = s.SnapshotTime
		}
	}
	if latest.IsZero() {
		return time.Time{}, types.ErrNotFound
	}
	return latest, nil
}

func (m *MemStore) CountGames(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games), nil
}

func (m *MemStore) CountUpcomingGames(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, g := range m.games {
		if g.CommenceTime.After(now) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) DistinctBookmakers(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, s := range m.snapshots {
		if !seen[s.Bookmaker] {
			seen[s.Bookmaker] = true
			out = append(out, s.Bookmaker)
		}
	}
	return out, nil
}

func (m *MemStore) Close() error { return nil }

// Games returns a copy of all stored games.
func (m *MemStore) Games() []types.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Game, len(m.games))
	copy(out, m.games)
	return out
}

// Snapshots returns a copy of all stored snapshots.
func (m *MemStore) Snapshots() []types.OddsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.OddsSnapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// ValueBets returns a copy of all stored value bets.
func (m *MemStore) ValueBets() []types.ValueBet {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.ValueBet, len(m.valueBets))
	copy(out, m.valueBets)
	return out
}

// SettleGame records a final result for a stored game.
func (m *MemStore) SettleGame(externalID, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.games {
		if m.games[i].ExternalID == externalID {
			m.games[i].Result = result
		}
	}
}

var _ storage.Store = (*MemStore)(nil)
