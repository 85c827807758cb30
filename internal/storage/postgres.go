package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

// querier is satisfied by both *sql.DB and *sql.Tx, letting every query
// method run either directly or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	q      querier
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and verifies the connection.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-store-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStore{db: db, q: db, logger: cfg.Logger}, nil
}

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so the migrate command can be re-run safely.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id BIGSERIAL PRIMARY KEY,
			external_id TEXT NOT NULL UNIQUE,
			league TEXT NOT NULL,
			home_team TEXT NOT NULL,
			away_team TEXT NOT NULL,
			commence_time TIMESTAMPTZ NOT NULL,
			home_score INTEGER,
			away_score INTEGER,
			result TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS odds_snapshots (
			id BIGSERIAL PRIMARY KEY,
			game_id BIGINT NOT NULL REFERENCES games(id),
			bookmaker TEXT NOT NULL,
			home_odds DOUBLE PRECISION NOT NULL,
			away_odds DOUBLE PRECISION NOT NULL,
			draw_odds DOUBLE PRECISION,
			home_implied_prob DOUBLE PRECISION NOT NULL,
			away_implied_prob DOUBLE PRECISION NOT NULL,
			draw_implied_prob DOUBLE PRECISION,
			snapshot_time TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (game_id, bookmaker, snapshot_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_odds_snapshots_game_time
			ON odds_snapshots (game_id, snapshot_time DESC)`,
		`CREATE TABLE IF NOT EXISTS value_bets (
			id UUID PRIMARY KEY,
			game_id BIGINT NOT NULL REFERENCES games(id),
			home_team TEXT NOT NULL,
			away_team TEXT NOT NULL,
			betting_selection TEXT NOT NULL,
			my_probability DOUBLE PRECISION NOT NULL,
			market_probability DOUBLE PRECISION NOT NULL,
			offered_odds DOUBLE PRECISION NOT NULL,
			fair_odds DOUBLE PRECISION NOT NULL,
			edge_percent DOUBLE PRECISION NOT NULL,
			bookmaker TEXT NOT NULL,
			kelly_fraction DOUBLE PRECISION NOT NULL,
			recommended_stake DOUBLE PRECISION NOT NULL,
			identified_at TIMESTAMPTZ NOT NULL,
			is_bet_placed BOOLEAN NOT NULL DEFAULT FALSE,
			result TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_value_bets_identified_at
			ON value_bets (identified_at DESC)`,
		`CREATE TABLE IF NOT EXISTS bet_results (
			id BIGSERIAL PRIMARY KEY,
			value_bet_id UUID NOT NULL REFERENCES value_bets(id),
			bookmaker TEXT NOT NULL,
			selection TEXT NOT NULL,
			odds_at_bet DOUBLE PRECISION NOT NULL,
			stake DOUBLE PRECISION NOT NULL,
			result TEXT,
			pnl DOUBLE PRECISION,
			closing_line_value DOUBLE PRECISION,
			placed_at TIMESTAMPTZ NOT NULL,
			settled_at TIMESTAMPTZ
		)`,
	}

	for _, stmt := range stmts {
		if _, err := p.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	p.logger.Info("schema-migrated", zap.Int("statements", len(stmts)))
	return nil
}

// InTx runs fn against a transaction-scoped copy of the store. Nested
// calls reuse the surrounding transaction.
func (p *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if _, inTx := p.q.(*sql.Tx); inTx {
		return fn(p)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txStore := &PostgresStore{db: p.db, q: tx, logger: p.logger}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	err = fn(txStore)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// UpsertGame inserts the game or reuses the row already stored for its
// external identifier. The update branch only touches updated_at so a
// game is never re-created or rewritten for the same id.
func (p *PostgresStore) UpsertGame(ctx context.Context, g *types.Game) (*types.Game, error) {
	query := `
		INSERT INTO games (external_id, league, home_team, away_team, commence_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO UPDATE SET updated_at = now()
		RETURNING id, external_id, league, home_team, away_team, commence_time,
			home_score, away_score, result, created_at, updated_at
	`

	row := p.q.QueryRowContext(ctx, query,
		g.ExternalID, g.League, g.HomeTeam, g.AwayTeam, g.CommenceTime)

	return scanGame(row)
}

// GameByExternalID returns the game for an external feed identifier.
func (p *PostgresStore) GameByExternalID(ctx context.Context, externalID string) (*types.Game, error) {
	query := `
		SELECT id, external_id, league, home_team, away_team, commence_time,
			home_score, away_score, result, created_at, updated_at
		FROM games WHERE external_id = $1
	`

	g, err := scanGame(p.q.QueryRowContext(ctx, query, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}

	return g, err
}

// OpenGames returns unsettled games starting after now, soonest first.
func (p *PostgresStore) OpenGames(ctx context.Context, now time.Time) ([]types.Game, error) {
	query := `
		SELECT id, external_id, league, home_team, away_team, commence_time,
			home_score, away_score, result, created_at, updated_at
		FROM games
		WHERE result IS NULL AND commence_time > $1
		ORDER BY commence_time ASC
	`

	rows, err := p.q.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("query open games: %w", err)
	}
	defer rows.Close()

	return collectGames(rows)
}

// SettledGames returns completed games in the window, oldest first.
func (p *PostgresStore) SettledGames(ctx context.Context, league string, from, to time.Time) ([]types.Game, error) {
	query := `
		SELECT id, external_id, league, home_team, away_team, commence_time,
			home_score, away_score, result, created_at, updated_at
		FROM games
		WHERE result IS NOT NULL
			AND commence_time >= $1 AND commence_time <= $2
			AND ($3 = '' OR league = $3)
		ORDER BY commence_time ASC
	`

	rows, err := p.q.QueryContext(ctx, query, from, to, league)
	if err != nil {
		return nil, fmt.Errorf("query settled games: %w", err)
	}
	defer rows.Close()

	return collectGames(rows)
}

// InsertSnapshot appends one odds snapshot row.
func (p *PostgresStore) InsertSnapshot(ctx context.Context, s *types.OddsSnapshot) error {
	query := `
		INSERT INTO odds_snapshots (
			game_id, bookmaker, home_odds, away_odds, draw_odds,
			home_implied_prob, away_implied_prob, draw_implied_prob, snapshot_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := p.q.ExecContext(ctx, query,
		s.GameID, s.Bookmaker, s.HomeOdds, s.AwayOdds, s.DrawOdds,
		s.HomeImplied, s.AwayImplied, s.DrawImplied, s.SnapshotTime)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return types.ErrDuplicateSnapshot
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}

	return nil
}

// SnapshotsByGame returns the snapshot time series for a game, newest
// first, restricted to the bookmaker set when one is given.
func (p *PostgresStore) SnapshotsByGame(ctx context.Context, gameID int64, bookmakers []string) ([]types.OddsSnapshot, error) {
	query := `
		SELECT id, game_id, bookmaker, home_odds, away_odds, draw_odds,
			home_implied_prob, away_implied_prob, draw_implied_prob,
			snapshot_time, created_at
		FROM odds_snapshots
		WHERE game_id = $1
			AND ($2::text[] IS NULL OR cardinality($2::text[]) = 0 OR bookmaker = ANY($2))
		ORDER BY snapshot_time DESC
	`

	rows, err := p.q.QueryContext(ctx, query, gameID, pq.Array(bookmakers))
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []types.OddsSnapshot
	for rows.Next() {
		var s types.OddsSnapshot
		err = rows.Scan(&s.ID, &s.GameID, &s.Bookmaker, &s.HomeOdds, &s.AwayOdds,
			&s.DrawOdds, &s.HomeImplied, &s.AwayImplied, &s.DrawImplied,
			&s.SnapshotTime, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

// InsertValueBet stores a detected value bet.
func (p *PostgresStore) InsertValueBet(ctx context.Context, v *types.ValueBet) error {
	query := `
		INSERT INTO value_bets (
			id, game_id, home_team, away_team, betting_selection,
			my_probability, market_probability, offered_odds, fair_odds,
			edge_percent, bookmaker, kelly_fraction, recommended_stake,
			identified_at, is_bet_placed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := p.q.ExecContext(ctx, query,
		v.ID, v.GameID, v.HomeTeam, v.AwayTeam, v.Selection,
		v.MyProbability, v.MarketProb, v.OfferedOdds, v.FairOdds,
		v.EdgePercent, v.Bookmaker, v.KellyFraction, v.Stake,
		v.IdentifiedAt, v.IsBetPlaced)

	if err != nil {
		return fmt.Errorf("insert value bet: %w", err)
	}

	p.logger.Debug("value-bet-stored",
		zap.String("value-bet-id", v.ID),
		zap.String("selection", v.Selection),
		zap.String("bookmaker", v.Bookmaker))

	return nil
}

// RecentValueBets returns the most recently identified value bets.
func (p *PostgresStore) RecentValueBets(ctx context.Context, limit int) ([]types.ValueBet, error) {
	query := `
		SELECT id, game_id, home_team, away_team, betting_selection,
			my_probability, market_probability, offered_odds, fair_odds,
			edge_percent, bookmaker, kelly_fraction, recommended_stake,
			identified_at, is_bet_placed, result
		FROM value_bets
		ORDER BY identified_at DESC
		LIMIT $1
	`

	rows, err := p.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query value bets: %w", err)
	}
	defer rows.Close()

	var out []types.ValueBet
	for rows.Next() {
		var v types.ValueBet
		var result sql.NullString
		err = rows.Scan(&v.ID, &v.GameID, &v.HomeTeam, &v.AwayTeam, &v.Selection,
			&v.MyProbability, &v.MarketProb, &v.OfferedOdds, &v.FairOdds,
			&v.EdgePercent, &v.Bookmaker, &v.KellyFraction, &v.Stake,
			&v.IdentifiedAt, &v.IsBetPlaced, &result)
		if err != nil {
			return nil, fmt.Errorf("scan value bet: %w", err)
		}
		v.Result = result.String
		out = append(out, v)
	}

	return out, rows.Err()
}

// InsertBetResult records a placed bet.
func (p *PostgresStore) InsertBetResult(ctx context.Context, b *types.BetResult) (*types.BetResult, error) {
	query := `
		INSERT INTO bet_results (value_bet_id, bookmaker, selection, odds_at_bet, stake, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := p.q.QueryRowContext(ctx, query,
		b.ValueBetID, b.Bookmaker, b.Selection, b.OddsAtBet, b.Stake, b.PlacedAt).Scan(&b.ID)
	if err != nil {
		return nil, fmt.Errorf("insert bet result: %w", err)
	}

	return b, nil
}

// BetResultByID returns one placed bet.
func (p *PostgresStore) BetResultByID(ctx context.Context, id int64) (*types.BetResult, error) {
	query := `
		SELECT id, value_bet_id, bookmaker, selection, odds_at_bet, stake,
			result, pnl, closing_line_value, placed_at, settled_at
		FROM bet_results WHERE id = $1
	`

	b, err := scanBetResult(p.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}

	return b, err
}

// UpdateBetResult writes settlement fields back to a placed bet.
func (p *PostgresStore) UpdateBetResult(ctx context.Context, b *types.BetResult) error {
	query := `
		UPDATE bet_results
		SET result = $2, pnl = $3, closing_line_value = $4, settled_at = $5
		WHERE id = $1
	`

	_, err := p.q.ExecContext(ctx, query,
		b.ID, nullString(b.Result), b.PnL, b.ClosingLine, b.SettledAt)
	if err != nil {
		return fmt.Errorf("update bet result: %w", err)
	}

	return nil
}

// SettledBetResults returns all bets with a recorded outcome.
func (p *PostgresStore) SettledBetResults(ctx context.Context) ([]types.BetResult, error) {
	query := `
		SELECT id, value_bet_id, bookmaker, selection, odds_at_bet, stake,
			result, pnl, closing_line_value, placed_at, settled_at
		FROM bet_results
		WHERE result IS NOT NULL
		ORDER BY settled_at ASC
	`

	rows, err := p.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query settled bets: %w", err)
	}
	defer rows.Close()

	var out []types.BetResult
	for rows.Next() {
		b, err := scanBetResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}

	return out, rows.Err()
}

// LatestSnapshotTime returns the newest snapshot timestamp in storage.
func (p *PostgresStore) LatestSnapshotTime(ctx context.Context) (time.Time, error) {
	var t sql.NullTime
	err := p.q.QueryRowContext(ctx,
		`SELECT max(snapshot_time) FROM odds_snapshots`).Scan(&t)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest snapshot: %w", err)
	}

	if !t.Valid {
		return time.Time{}, types.ErrNotFound
	}

	return t.Time, nil
}

// CountGames returns the total number of stored games.
func (p *PostgresStore) CountGames(ctx context.Context) (int, error) {
	var n int
	err := p.q.QueryRowContext(ctx, `SELECT count(*) FROM games`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

// CountUpcomingGames returns games starting after now.
func (p *PostgresStore) CountUpcomingGames(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := p.q.QueryRowContext(ctx,
		`SELECT count(*) FROM games WHERE commence_time > $1`, now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count upcoming games: %w", err)
	}
	return n, nil
}

// DistinctBookmakers returns every bookmaker seen in stored snapshots.
func (p *PostgresStore) DistinctBookmakers(ctx context.Context) ([]string, error) {
	rows, err := p.q.QueryContext(ctx,
		`SELECT DISTINCT bookmaker FROM odds_snapshots ORDER BY bookmaker`)
	if err != nil {
		return nil, fmt.Errorf("query bookmakers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan bookmaker: %w", err)
		}
		out = append(out, b)
	}

	return out, rows.Err()
}

// Close closes the database connection.
func (p *PostgresStore) Close() error {
	p.logger.Info("closing-postgres-store")
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*types.Game, error) {
	var g types.Game
	var result sql.NullString

	err := row.Scan(&g.ID, &g.ExternalID, &g.League, &g.HomeTeam, &g.AwayTeam,
		&g.CommenceTime, &g.HomeScore, &g.AwayScore, &result,
		&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}

	g.Result = result.String
	return &g, nil
}

func collectGames(rows *sql.Rows) ([]types.Game, error) {
	var out []types.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func scanBetResult(row rowScanner) (*types.BetResult, error) {
	var b types.BetResult
	var result sql.NullString
	var pnl sql.NullFloat64

	err := row.Scan(&b.ID, &b.ValueBetID, &b.Bookmaker, &b.Selection,
		&b.OddsAtBet, &b.Stake, &result, &pnl, &b.ClosingLine,
		&b.PlacedAt, &b.SettledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan bet result: %w", err)
	}

	b.Result = result.String
	b.PnL = pnl.Float64
	return &b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
