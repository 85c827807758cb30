package types

import "time"

// Game result codes as recorded by the settlement process.
const (
	ResultHome = "H"
	ResultAway = "A"
	ResultDraw = "D"
)

// Betting selection labels used on value bets and bet results.
const (
	SelectionHome = "Home"
	SelectionAway = "Away"
	SelectionDraw = "Draw"
)

// Game represents a scheduled matchup between two teams.
// The external feed identifier is unique and immutable once created;
// Result stays empty until the game has been settled.
type Game struct {
	ID           int64
	ExternalID   string // The Odds API event id
	League       string // e.g. "basketball_nba", "soccer_epl"
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time // UTC
	HomeScore    *int
	AwayScore    *int
	Result       string // "H", "A", "D" or empty while unsettled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Settled reports whether a result has been recorded for the game.
func (g *Game) Settled() bool {
	return g.Result != ""
}
