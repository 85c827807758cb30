package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger, _ := zap.NewDevelopment()
	return &PostgresStore{db: db, q: db, logger: logger}, mock
}

var gameColumns = []string{
	"id", "external_id", "league", "home_team", "away_team", "commence_time",
	"home_score", "away_score", "result", "created_at", "updated_at",
}

func TestPostgresStore_UpsertGame(t *testing.T) {
	store, mock := newMockStore(t)

	commence := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO games").
		WithArgs("evt-1", "basketball_nba", "Boston Celtics", "Miami Heat", commence).
		WillReturnRows(sqlmock.NewRows(gameColumns).
			AddRow(int64(7), "evt-1", "basketball_nba", "Boston Celtics",
				"Miami Heat", commence, nil, nil, nil, now, now))

	g, err := store.UpsertGame(context.Background(), &types.Game{
		ExternalID:   "evt-1",
		League:       "basketball_nba",
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		CommenceTime: commence,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if g.ID != 7 {
		t.Errorf("expected stored id 7, got %d", g.ID)
	}
	if g.Result != "" {
		t.Errorf("expected empty result for open game, got %q", g.Result)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_GameByExternalID_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM games WHERE external_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(gameColumns))

	_, err := store.GameByExternalID(context.Background(), "missing")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_InsertSnapshot(t *testing.T) {
	store, mock := newMockStore(t)

	snap := types.NewOddsSnapshot(7, "pinnacle", 1.90, 2.05, nil, time.Now())

	mock.ExpectExec("INSERT INTO odds_snapshots").
		WithArgs(snap.GameID, snap.Bookmaker, snap.HomeOdds, snap.AwayOdds,
			snap.DrawOdds, snap.HomeImplied, snap.AwayImplied, snap.DrawImplied,
			snap.SnapshotTime).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.InsertSnapshot(context.Background(), snap); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_InsertSnapshot_Duplicate(t *testing.T) {
	store, mock := newMockStore(t)

	snap := types.NewOddsSnapshot(7, "pinnacle", 1.90, 2.05, nil, time.Now())

	mock.ExpectExec("INSERT INTO odds_snapshots").
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.InsertSnapshot(context.Background(), snap)
	if !errors.Is(err, types.ErrDuplicateSnapshot) {
		t.Errorf("expected ErrDuplicateSnapshot, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_InsertSnapshot_Error(t *testing.T) {
	store, mock := newMockStore(t)

	snap := types.NewOddsSnapshot(7, "pinnacle", 1.90, 2.05, nil, time.Now())

	mock.ExpectExec("INSERT INTO odds_snapshots").
		WillReturnError(sqlmock.ErrCancelled)

	err := store.InsertSnapshot(context.Background(), snap)
	if err == nil {
		t.Error("expected error, got nil")
	}
	if errors.Is(err, types.ErrDuplicateSnapshot) {
		t.Error("generic failure must not map to ErrDuplicateSnapshot")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_SnapshotsByGame_BookmakerFilter(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	columns := []string{
		"id", "game_id", "bookmaker", "home_odds", "away_odds", "draw_odds",
		"home_implied_prob", "away_implied_prob", "draw_implied_prob",
		"snapshot_time", "created_at",
	}

	mock.ExpectQuery("SELECT (.+) FROM odds_snapshots").
		WithArgs(int64(7), pq.Array([]string{"pinnacle", "betfair"})).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), int64(7), "pinnacle", 1.90, 2.05, nil,
				1/1.90, 1/2.05, nil, now, now).
			AddRow(int64(2), int64(7), "betfair", 1.88, 2.08, nil,
				1/1.88, 1/2.08, nil, now.Add(-time.Hour), now))

	snaps, err := store.SnapshotsByGame(context.Background(), 7, []string{"pinnacle", "betfair"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Bookmaker != "pinnacle" {
		t.Errorf("expected newest snapshot first, got %s", snaps[0].Bookmaker)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_SnapshotsByGame_AllBookmakers(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	columns := []string{
		"id", "game_id", "bookmaker", "home_odds", "away_odds", "draw_odds",
		"home_implied_prob", "away_implied_prob", "draw_implied_prob",
		"snapshot_time", "created_at",
	}

	// A nil bookmaker slice reaches Postgres as a NULL array, so the
	// filter must guard against NULL before testing cardinality or the
	// predicate evaluates to NULL and drops every row.
	mock.ExpectQuery(`SELECT (.+) FROM odds_snapshots\s+WHERE game_id = \$1\s+AND \(\$2::text\[\] IS NULL OR cardinality\(\$2::text\[\]\) = 0 OR bookmaker = ANY\(\$2\)\)`).
		WithArgs(int64(7), pq.Array([]string(nil))).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(1), int64(7), "pinnacle", 1.90, 2.05, nil,
				1/1.90, 1/2.05, nil, now, now).
			AddRow(int64(2), int64(7), "draftkings", 1.95, 1.95, nil,
				1/1.95, 1/1.95, nil, now.Add(-time.Hour), now))

	snaps, err := store.SnapshotsByGame(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(snaps) != 2 {
		t.Fatalf("expected snapshots from every bookmaker, got %d", len(snaps))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_InTx_CommitsOnSuccess(t *testing.T) {
	store, mock := newMockStore(t)

	snap := types.NewOddsSnapshot(7, "pinnacle", 1.90, 2.05, nil, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO odds_snapshots").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(tx Store) error {
		return tx.InsertSnapshot(context.Background(), snap)
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_InTx_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(Store) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected fn error to propagate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_InTx_ReusesSurroundingTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(outer Store) error {
		return outer.InTx(context.Background(), func(Store) error {
			return nil
		})
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	// A nested call must not open a second transaction.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_UpdateBetResult(t *testing.T) {
	store, mock := newMockStore(t)

	settledAt := time.Now()
	clv := 4.2
	bet := &types.BetResult{
		ID:          3,
		Result:      types.BetWin,
		PnL:         20.0,
		ClosingLine: &clv,
		SettledAt:   &settledAt,
	}

	mock.ExpectExec("UPDATE bet_results").
		WithArgs(bet.ID, nullString(bet.Result), bet.PnL, bet.ClosingLine, bet.SettledAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.UpdateBetResult(context.Background(), bet); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_LatestSnapshotTime_Empty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT max").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	_, err := store.LatestSnapshotTime(context.Background())
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound on empty table, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresStore_Close(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectClose()

	if err := store.Close(); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStore_Interface(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	db, _, _ := sqlmock.New()
	defer db.Close()

	var _ Store = &PostgresStore{db: db, q: db, logger: logger}
}
