package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundSensibly(t *testing.T) {
	tests := []struct {
		value    int64
		expected int64
	}{
		{0, 0},
		{1, 50},
		{40, 50},
		{50, 50},
		{51, 100},
		{949, 950},
		{951, 1000},
		{999, 1000},
		{1000, 1000},
		{1001, 1100},
		{1300, 1300},
		{1301, 1400},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, RoundSensibly(tt.value), "RoundSensibly(%d)", tt.value)
	}
}

func TestSuggestedTarget(t *testing.T) {
	// Standard boost below the cap
	assert.Equal(t, int64(1300), SuggestedTarget(1000, 1.3))

	// Small previous values still land on a round number
	assert.Equal(t, int64(100), SuggestedTarget(40, 1.3))

	// The 40% cap binds when the multiplier is larger
	assert.Equal(t, int64(1400), SuggestedTarget(1000, 2.0))

	// Quarterly multiplier
	assert.Equal(t, int64(1200), SuggestedTarget(1000, 1.2))
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 30, percentChange(13, 10))
	assert.Equal(t, -50, percentChange(5, 10))
	assert.Equal(t, 0, percentChange(5, 0))
	assert.Equal(t, 0, percentChange(10, 10))
}
