package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Bet settlement outcomes.
const (
	BetWin  = "WIN"
	BetLoss = "LOSS"
	BetVoid = "VOID"
)

// ValueBet is a detected positive-expected-value opportunity.
// FairOdds and EdgePercent are derivable from MyProbability and
// OfferedOdds; they are stored redundantly for reporting and must be
// internally consistent at creation time.
type ValueBet struct {
	ID            string
	GameID        int64
	HomeTeam      string
	AwayTeam      string
	Selection     string  // "Home", "Away", "Draw"
	MyProbability float64 // sharp-consensus probability for the selection
	MarketProb    float64 // soft book's own implied probability
	OfferedOdds   float64
	FairOdds      float64 // 1/MyProbability
	EdgePercent   float64 // (OfferedOdds/FairOdds - 1) * 100
	Bookmaker     string
	KellyFraction float64
	Stake         float64
	IdentifiedAt  time.Time
	IsBetPlaced   bool
	Result        string // "WIN", "LOSS", "VOID" or empty while pending
}

// NewValueBet constructs a value bet, deriving fair odds and edge from
// the consensus probability and the offered price so the stored copies
// cannot disagree with their inputs.
func NewValueBet(game *Game, selection string, myProb, marketProb, offeredOdds float64, bookmaker string, kellyFraction, stake float64) *ValueBet {
	fairOdds := 1.0 / myProb

	return &ValueBet{
		ID:            uuid.New().String(),
		GameID:        game.ID,
		HomeTeam:      game.HomeTeam,
		AwayTeam:      game.AwayTeam,
		Selection:     selection,
		MyProbability: myProb,
		MarketProb:    marketProb,
		OfferedOdds:   offeredOdds,
		FairOdds:      fairOdds,
		EdgePercent:   (offeredOdds/fairOdds - 1) * 100,
		Bookmaker:     bookmaker,
		KellyFraction: kellyFraction,
		Stake:         stake,
		IdentifiedAt:  time.Now().UTC(),
	}
}

// String returns a one-line summary for logs and console output.
func (v *ValueBet) String() string {
	return fmt.Sprintf(
		"ValueBet[%s] %s vs %s %s @ %.2f (%s) fair=%.2f edge=%.1f%% stake=$%.2f",
		v.ID[:8],
		v.HomeTeam,
		v.AwayTeam,
		v.Selection,
		v.OfferedOdds,
		v.Bookmaker,
		v.FairOdds,
		v.EdgePercent,
		v.Stake,
	)
}

// BetResult tracks an actually placed bet and its outcome. Settlement
// fills in Result, PnL and the closing line value.
type BetResult struct {
	ID          int64
	ValueBetID  string
	Bookmaker   string
	Selection   string
	OddsAtBet   float64
	Stake       float64
	Result      string // "WIN", "LOSS", "VOID" or empty while open
	PnL         float64
	ClosingLine *float64 // CLV percent, nil when no closing odds were supplied
	PlacedAt    time.Time
	SettledAt   *time.Time
}
