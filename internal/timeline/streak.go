package timeline

import (
	"sort"

	"github.com/sammoorhouse/mentos/internal/model"
)

// NotableStreaks are the run lengths that produce a streak_update event.
var NotableStreaks = map[int]struct{}{
	3: {}, 5: {}, 7: {}, 10: {}, 14: {}, 21: {}, 30: {},
}

// StreakResult summarizes one alignment signal over an ordered day range.
type StreakResult struct {
	StateByDay    map[model.Date]bool
	CurrentLength int
	LongestLength int
}

// ComputeStreak walks days in ascending order, incrementing the run on an
// aligned day and resetting on a miss. A day absent from alignedByDay counts
// as not aligned.
func ComputeStreak(days []model.Date, alignedByDay map[model.Date]bool) StreakResult {
	sorted := make([]model.Date, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var current, longest int
	states := make(map[model.Date]bool, len(sorted))
	for _, day := range sorted {
		ok := alignedByDay[day]
		states[day] = ok
		if ok {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return StreakResult{CurrentLength: current, LongestLength: longest, StateByDay: states}
}

// ComputeAlignment derives the two per-day boolean signals from rollups. A
// day with no rollup is vacuously aligned for both signals: a day without
// spend counts as a success.
func ComputeAlignment(days []model.Date, rollups Rollups, dailyBudget int64) (takeawayFree, underBudget map[model.Date]bool) {
	takeawayFree = make(map[model.Date]bool, len(days))
	underBudget = make(map[model.Date]bool, len(days))
	for _, day := range days {
		rollup, ok := rollups[day]
		takeawayFree[day] = !(ok && len(rollup.TakeawayTxnIDs) > 0)
		underBudget[day] = !ok || rollup.SpendTotal <= dailyBudget
	}
	return takeawayFree, underBudget
}

// TrailingDays returns the count days ending at until, ascending.
func TrailingDays(until model.Date, count int) []model.Date {
	days := make([]model.Date, count)
	start := until.AddDays(-(count - 1))
	for i := range days {
		days[i] = start.AddDays(i)
	}
	return days
}
