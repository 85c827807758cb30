package market

// VigInfo describes the bookmaker margin encoded in one market's implied
// probabilities.
type VigInfo struct {
	TotalProbability float64
	Vig              float64
	VigPercent       float64
}

// CalculateVig measures the margin in a set of outcome probabilities. The
// probabilities of a priced market sum above 1.0; the excess is the vig.
func CalculateVig(probs ...float64) VigInfo {
	var total float64
	for _, p := range probs {
		total += p
	}

	vig := total - 1.0

	var vigPercent float64
	if total > 0 {
		vigPercent = vig / total * 100
	}

	return VigInfo{
		TotalProbability: total,
		Vig:              vig,
		VigPercent:       vigPercent,
	}
}

// RemoveVig strips the bookmaker margin from implied probabilities:
// fair = implied / (1 + vig). Probabilities that already sum to exactly
// 1.0 pass through unchanged with zero vig reported.
func RemoveVig(probs ...float64) ([]float64, VigInfo) {
	info := CalculateVig(probs...)

	fair := make([]float64, len(probs))
	if info.Vig == 0 {
		copy(fair, probs)
		return fair, info
	}

	for i, p := range probs {
		fair[i] = p / (1 + info.Vig)
	}

	return fair, info
}
