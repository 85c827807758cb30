package testutil

import (
	"time"

	"github.com/nmartinez/oddsedge/internal/feed"
)

// NBAEvent builds a two-way feed event with one bookmaker block quoting
// both teams head-to-head.
func NBAEvent(id, bookmaker string, homeOdds, awayOdds float64) feed.Event {
	return feed.Event{
		ID:           id,
		SportKey:     "basketball_nba",
		SportTitle:   "NBA",
		CommenceTime: time.Now().UTC().Add(6 * time.Hour).Format(time.RFC3339),
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Miami Heat",
		Bookmakers: []feed.Bookmaker{
			H2HBlock(bookmaker, "Boston Celtics", homeOdds, "Miami Heat", awayOdds),
		},
	}
}

// SoccerEvent builds a three-way feed event including a draw price.
func SoccerEvent(id, bookmaker string, homeOdds, awayOdds, drawOdds float64) feed.Event {
	block := H2HBlock(bookmaker, "Arsenal", homeOdds, "Chelsea", awayOdds)
	block.Markets[0].Outcomes = append(block.Markets[0].Outcomes,
		feed.Outcome{Name: "Draw", Price: drawOdds})

	return feed.Event{
		ID:           id,
		SportKey:     "soccer_epl",
		SportTitle:   "EPL",
		CommenceTime: time.Now().UTC().Add(6 * time.Hour).Format(time.RFC3339),
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		Bookmakers:   []feed.Bookmaker{block},
	}
}

// H2HBlock builds one bookmaker block with a head-to-head market.
func H2HBlock(bookmaker, homeTeam string, homeOdds float64, awayTeam string, awayOdds float64) feed.Bookmaker {
	return feed.Bookmaker{
		Key:        bookmaker,
		Title:      bookmaker,
		LastUpdate: time.Now().UTC().Format(time.RFC3339),
		Markets: []feed.Market{
			{
				Key: "h2h",
				Outcomes: []feed.Outcome{
					{Name: homeTeam, Price: homeOdds},
					{Name: awayTeam, Price: awayOdds},
				},
			},
		},
	}
}
