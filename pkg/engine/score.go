package engine

const (
	maxScore        = 100.0
	penaltyPerAlert = 5.0
)

// Score reduces an alert list to a value in [0, 100]. Every alert costs the
// same number of points regardless of severity.
func Score(alerts []Alert) float64 {
	return ScoreCount(len(alerts))
}

// ScoreCount is Score for a known alert count.
func ScoreCount(n int) float64 {
	if n < 0 {
		n = 0
	}
	score := maxScore - penaltyPerAlert*float64(n)
	if score < 0 {
		return 0
	}
	return score
}
