package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sammoorhouse/mentos/internal/model"
)

func day(y int, m time.Month, d int) model.Date {
	return model.Date{Year: y, Month: m, Day: d}
}

func TestComputeStreak(t *testing.T) {
	days := TrailingDays(day(2026, 3, 10), 6)
	aligned := map[model.Date]bool{
		days[0]: true,
		days[1]: true,
		days[2]: false,
		days[3]: true,
		days[4]: true,
		days[5]: true,
	}

	result := ComputeStreak(days, aligned)
	assert.Equal(t, 3, result.CurrentLength)
	assert.Equal(t, 3, result.LongestLength)
	assert.False(t, result.StateByDay[days[2]])
	assert.True(t, result.StateByDay[days[5]])
}

func TestComputeStreakEndsOnMiss(t *testing.T) {
	days := TrailingDays(day(2026, 3, 10), 4)
	aligned := map[model.Date]bool{
		days[0]: true,
		days[1]: true,
		days[2]: true,
		days[3]: false,
	}

	result := ComputeStreak(days, aligned)
	assert.Equal(t, 0, result.CurrentLength)
	assert.Equal(t, 3, result.LongestLength)
}

func TestComputeStreakUnsortedInput(t *testing.T) {
	// Days arrive out of order; the walk must still be chronological
	d1, d2, d3 := day(2026, 3, 8), day(2026, 3, 9), day(2026, 3, 10)
	aligned := map[model.Date]bool{d1: true, d2: false, d3: true}

	result := ComputeStreak([]model.Date{d3, d1, d2}, aligned)
	assert.Equal(t, 1, result.CurrentLength)
	assert.Equal(t, 1, result.LongestLength)
}

func TestComputeAlignmentVacuousDays(t *testing.T) {
	quiet := day(2026, 3, 9)
	spendDay := day(2026, 3, 10)
	takeawayDay := day(2026, 3, 11)
	days := []model.Date{quiet, spendDay, takeawayDay}

	rollups := Rollups{
		spendDay:    {Day: spendDay, SpendTotal: 2500, TransactionIDs: []string{"tx-1"}},
		takeawayDay: {Day: takeawayDay, SpendTotal: 4000, TransactionIDs: []string{"tx-2"}, TakeawayTxnIDs: []string{"tx-2"}},
	}

	takeawayFree, underBudget := ComputeAlignment(days, rollups, 3000)

	// A day with no transactions counts as a success for both signals
	assert.True(t, takeawayFree[quiet])
	assert.True(t, underBudget[quiet])

	assert.True(t, takeawayFree[spendDay])
	assert.True(t, underBudget[spendDay])

	assert.False(t, takeawayFree[takeawayDay])
	assert.False(t, underBudget[takeawayDay])
}

func TestComputeAlignmentBudgetBoundary(t *testing.T) {
	d := day(2026, 3, 10)
	rollups := Rollups{d: {Day: d, SpendTotal: 3000}}

	// Spending exactly the budget still counts as under budget
	_, underBudget := ComputeAlignment([]model.Date{d}, rollups, 3000)
	assert.True(t, underBudget[d])

	_, underBudget = ComputeAlignment([]model.Date{d}, rollups, 2999)
	assert.False(t, underBudget[d])
}

func TestTrailingDays(t *testing.T) {
	days := TrailingDays(day(2026, 3, 10), 3)
	assert.Equal(t, []model.Date{day(2026, 3, 8), day(2026, 3, 9), day(2026, 3, 10)}, days)
}
