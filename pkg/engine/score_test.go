package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		alerts int
		want   float64
	}{
		{0, 100},
		{1, 95},
		{2, 90},
		{19, 5},
		{20, 0},
		{21, 0},
		{250, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(make([]Alert, tt.alerts)), "alerts=%d", tt.alerts)
	}
}

func TestScoreIsMonotonic(t *testing.T) {
	prev := ScoreCount(0)
	for n := 1; n <= 30; n++ {
		cur := ScoreCount(n)
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
}

func TestScoreNil(t *testing.T) {
	assert.Equal(t, 100.0, Score(nil))
	assert.Equal(t, 100.0, ScoreCount(-3))
}
