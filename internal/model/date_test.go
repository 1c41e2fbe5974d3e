package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	instant := time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 15}, DateOf(instant))
}

func TestLocalDay(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	// 23:30 UTC during BST is already the next day in London
	instant := time.Date(2026, 6, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, Date{Year: 2026, Month: time.June, Day: 11}, LocalDay(instant, london))

	// In winter London matches UTC
	instant = time.Date(2026, 1, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, Date{Year: 2026, Month: time.January, Day: 10}, LocalDay(instant, london))
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		name     string
		start    Date
		days     int
		expected Date
	}{
		{
			name:     "forward within month",
			start:    Date{Year: 2026, Month: time.March, Day: 10},
			days:     5,
			expected: Date{Year: 2026, Month: time.March, Day: 15},
		},
		{
			name:     "across month boundary",
			start:    Date{Year: 2026, Month: time.January, Day: 30},
			days:     3,
			expected: Date{Year: 2026, Month: time.February, Day: 2},
		},
		{
			name:     "backwards across year boundary",
			start:    Date{Year: 2026, Month: time.January, Day: 2},
			days:     -3,
			expected: Date{Year: 2025, Month: time.December, Day: 30},
		},
		{
			name:     "leap day",
			start:    Date{Year: 2028, Month: time.February, Day: 28},
			days:     1,
			expected: Date{Year: 2028, Month: time.February, Day: 29},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.start.AddDays(tt.days))
		})
	}
}

func TestWeekStart(t *testing.T) {
	// 2026-03-18 is a Wednesday; its week starts Monday 2026-03-16
	wednesday := Date{Year: 2026, Month: time.March, Day: 18}
	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 16}, wednesday.WeekStart())

	// A Monday is its own week start
	monday := Date{Year: 2026, Month: time.March, Day: 16}
	assert.Equal(t, monday, monday.WeekStart())

	// A Sunday belongs to the preceding Monday
	sunday := Date{Year: 2026, Month: time.March, Day: 22}
	assert.Equal(t, monday, sunday.WeekStart())
}

func TestPeriodStarts(t *testing.T) {
	d := Date{Year: 2026, Month: time.August, Day: 30}
	assert.Equal(t, Date{Year: 2026, Month: time.August, Day: 1}, d.MonthStart())
	assert.Equal(t, Date{Year: 2026, Month: time.July, Day: 1}, d.QuarterStart())

	q1 := Date{Year: 2026, Month: time.February, Day: 14}
	assert.Equal(t, Date{Year: 2026, Month: time.January, Day: 1}, q1.QuarterStart())
}

func TestDateOrderingAndString(t *testing.T) {
	earlier := Date{Year: 2025, Month: time.December, Day: 31}
	later := Date{Year: 2026, Month: time.January, Day: 1}

	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.False(t, later.Before(later))
	assert.Equal(t, "2026-01-01", later.String())
}
