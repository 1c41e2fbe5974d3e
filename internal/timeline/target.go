package timeline

// RoundSensibly rounds up to the nearest 50 below 1000, else the nearest
// 100, producing round numbers a user recognizes as a target.
func RoundSensibly(value int64) int64 {
	if value < 1000 {
		return (value + 49) / 50 * 50
	}
	return (value + 99) / 100 * 100
}

// SuggestedTarget boosts the previous period's value by multiplier, capped
// at a 40% uplift regardless of the nominal multiplier, then rounds
// sensibly.
func SuggestedTarget(previous int64, multiplier float64) int64 {
	boosted := int64(float64(previous) * multiplier)
	capped := int64(float64(previous) * 1.4)
	if boosted < capped {
		capped = boosted
	}
	return RoundSensibly(capped)
}
