// Package kelly implements fractional-Kelly stake sizing.
package kelly

// Stake returns the recommended dollar stake for a bet with the given win
// probability and decimal odds.
//
// Full Kelly: f* = (b*p - q) / b, where b = odds - 1 and q = 1 - p.
// The full fraction is floored at zero (no edge means no bet), scaled by
// kellyFraction (e.g. 0.25 for quarter Kelly), and the resulting stake is
// capped at bankroll * maxPercent.
//
// The result is always in [0, bankroll*maxPercent]. Odds at or below 1.0
// imply no possible gain and return zero regardless of probability.
func Stake(winProb, odds, bankroll, kellyFraction, maxPercent float64) float64 {
	b := odds - 1
	if b <= 0 || odds <= 1 {
		return 0
	}

	q := 1 - winProb
	fullKelly := (b*winProb - q) / b
	if fullKelly < 0 {
		fullKelly = 0
	}

	stake := bankroll * fullKelly * kellyFraction

	cap := bankroll * maxPercent
	if stake > cap {
		stake = cap
	}
	if stake < 0 {
		return 0
	}

	return stake
}
