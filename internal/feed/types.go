package feed

// Event is one upcoming game as returned by The Odds API /odds endpoint.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"` // ISO-8601 UTC
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one book's quote block for an event.
type Bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update"`
	Markets    []Market `json:"markets"`
}

// Market holds the priced outcomes for one market type.
// Only the head-to-head ("h2h") market is consumed.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is a single label/price pair inside a market.
type Outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"` // decimal odds
}

// H2H returns the head-to-head market for the bookmaker, if present.
func (b *Bookmaker) H2H() (*Market, bool) {
	for i := range b.Markets {
		if b.Markets[i].Key == "h2h" {
			return &b.Markets[i], true
		}
	}
	return nil, false
}

// PriceFor returns the decimal price quoted for the given outcome label.
func (m *Market) PriceFor(name string) (float64, bool) {
	for _, o := range m.Outcomes {
		if o.Name == name {
			return o.Price, true
		}
	}
	return 0, false
}
