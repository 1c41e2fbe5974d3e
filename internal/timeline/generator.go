package timeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sammoorhouse/mentos/internal/common"
	"github.com/sammoorhouse/mentos/internal/model"
	"github.com/sammoorhouse/mentos/internal/service"
)

// Config holds configuration options for the timeline generator.
type Config struct {
	DefaultTimezone    string
	LookbackDays       int
	HistoryDays        int
	DefaultDailyBudget int64
	MaxPageSize        int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTimezone:    "Europe/London",
		LookbackDays:       400,
		HistoryDays:        120,
		DefaultDailyBudget: 3000,
		MaxPageSize:        100,
	}
}

// Generator assembles the merged, deterministically ordered event feed.
// Generation is idempotent for reads: the same input data always reproduces
// the same ordered event set and ids. The breakthrough registry is the one
// deliberate exception; first caller wins, permanently.
type Generator struct {
	store  service.Storage
	config Config
}

// New creates a timeline generator with the default configuration.
func New(store service.Storage) *Generator {
	return NewWithConfig(store, DefaultConfig())
}

// NewWithConfig creates a timeline generator with custom configuration.
func NewWithConfig(store service.Storage, config Config) *Generator {
	return &Generator{store: store, config: config}
}

// Generate produces one page of the user's timeline. A malformed cursor is
// treated as offset 0 and the limit is clamped to [1, MaxPageSize].
func (g *Generator) Generate(ctx context.Context, userID, cursor string, limit int, now time.Time) (*model.TimelinePage, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > g.config.MaxPageSize {
		limit = g.config.MaxPageSize
	}

	loc, dailyBudget, err := g.resolvePreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)
	today := model.DateOf(now)

	lookbackStart := today.AddDays(-g.config.LookbackDays).Time(loc)
	transactions, err := g.store.GetTransactionsByUser(ctx, userID, lookbackStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	rollups := BuildDailyRollups(transactions, loc)
	days := TrailingDays(today, g.config.HistoryDays)
	takeawayAligned, budgetAligned := ComputeAlignment(days, rollups, dailyBudget)
	takeawayStreak := ComputeStreak(days, takeawayAligned)
	budgetStreak := ComputeStreak(days, budgetAligned)

	var events []model.TimelineEvent
	events = append(events, g.weeklyEvents(userID, days, rollups, takeawayAligned, budgetAligned, takeawayStreak, budgetStreak, loc)...)

	walked, err := g.walkStreaks(ctx, userID, days, rollups, takeawayAligned, budgetAligned, dailyBudget, loc)
	if err != nil {
		return nil, err
	}
	events = append(events, walked...)

	events = append(events, g.monthlyEvents(userID, days, rollups, budgetAligned, loc)...)
	events = append(events, g.quarterlyEvents(userID, days, rollups, budgetAligned, loc)...)
	events = append(events, g.yearReview(userID, today, days, rollups, budgetAligned, loc)...)

	sortEvents(events)

	offset := decodeCursor(cursor)
	page := &model.TimelinePage{Events: []model.TimelineEvent{}}
	if offset < len(events) {
		end := offset + limit
		if end > len(events) {
			end = len(events)
		}
		page.Events = events[offset:end]
		if end < len(events) {
			page.NextCursor = encodeCursor(end)
		}
	}

	slog.Debug("Generated timeline",
		"user_id", userID,
		"total_events", len(events),
		"offset", offset,
		"page_size", len(page.Events))
	return page, nil
}

// resolvePreferences loads the user's timezone and daily budget, applying
// safe defaults when no preference row exists or values are unusable.
func (g *Generator) resolvePreferences(ctx context.Context, userID string) (*time.Location, int64, error) {
	tzName := g.config.DefaultTimezone
	dailyBudget := g.config.DefaultDailyBudget

	prefs, err := g.store.GetPreferences(ctx, userID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		// No preference row; defaults apply.
	case err != nil:
		return nil, 0, fmt.Errorf("failed to load preferences: %w", err)
	default:
		if prefs.Timezone != "" {
			tzName = prefs.Timezone
		}
		if prefs.DailyBudget > 0 {
			dailyBudget = prefs.DailyBudget
		}
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		slog.Warn("Unknown timezone, using default", "timezone", tzName, "user_id", userID)
		loc, err = time.LoadLocation(g.config.DefaultTimezone)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load default timezone: %w", err)
		}
	}
	return loc, dailyBudget, nil
}

// weeklyEvents emits one progress card per Monday-aligned week, scoring each
// day 0-2 from the two alignment signals.
func (g *Generator) weeklyEvents(userID string, days []model.Date, rollups Rollups, takeawayAligned, budgetAligned map[model.Date]bool, takeawayStreak, budgetStreak StreakResult, loc *time.Location) []model.TimelineEvent {
	var weekStarts []model.Date
	weekDays := make(map[model.Date][]model.Date)
	for _, d := range days {
		ws := d.WeekStart()
		if _, ok := weekDays[ws]; !ok {
			weekStarts = append(weekStarts, ws)
		}
		weekDays[ws] = append(weekDays[ws], d)
	}

	events := make([]model.TimelineEvent, 0, len(weekStarts))
	for _, ws := range weekStarts {
		var dayStates []int
		var txnIDs []string
		for _, d := range weekDays[ws] {
			score := 0
			if takeawayAligned[d] {
				score++
			}
			if budgetAligned[d] {
				score++
			}
			dayStates = append(dayStates, score)
			txnIDs = append(txnIDs, rollups.Day(d).TransactionIDs...)
		}
		if len(dayStates) > 7 {
			dayStates = dayStates[:7]
		}

		occurredAt := ws.Time(loc)
		events = append(events, model.TimelineEvent{
			ID:         EventID(userID, "weekly_progress", ws.String()),
			Type:       model.EventWeeklyProgress,
			OccurredAt: occurredAt,
			Title:      "Weekly progress",
			Body: fmt.Sprintf("Takeaway-free streak %dd, under-budget streak %dd.",
				takeawayStreak.CurrentLength, budgetStreak.CurrentLength),
			Meta: map[string]any{
				"week_start": ws.String(),
				"days":       dayStates,
			},
			Evidence: NewEvidence(occurredAt, occurredAt.AddDate(0, 0, 7), txnIDs, map[string]float64{
				"takeaway_streak": float64(takeawayStreak.CurrentLength),
				"budget_streak":   float64(budgetStreak.CurrentLength),
			}),
			Priority:      70,
			SchemaVersion: 1,
		})
	}
	return events
}

// walkStreaks replays the day range, emitting streak_update events at
// notable lengths, streak_broken events when a takeaway transaction ends a
// run, and breakthrough celebrations the first time an under-budget streak
// crosses an unlock threshold.
func (g *Generator) walkStreaks(ctx context.Context, userID string, days []model.Date, rollups Rollups, takeawayAligned, budgetAligned map[model.Date]bool, dailyBudget int64, loc *time.Location) ([]model.TimelineEvent, error) {
	var events []model.TimelineEvent
	var currTakeaway, currBudget int

	for _, d := range days {
		rollup := rollups.Day(d)
		takeOK := takeawayAligned[d]
		budgetOK := budgetAligned[d]
		if takeOK {
			currTakeaway++
		} else {
			currTakeaway = 0
		}
		if budgetOK {
			currBudget++
		} else {
			currBudget = 0
		}

		dayStart, dayEnd := DayBounds(d, loc)

		if _, notable := NotableStreaks[currTakeaway]; notable {
			events = append(events, model.TimelineEvent{
				ID:         EventID(userID, "streak_update", "takeaway", d.String(), fmt.Sprint(currTakeaway)),
				Type:       model.EventStreakUpdate,
				OccurredAt: dayEnd,
				Title:      "Takeaway-free streak",
				Body:       fmt.Sprintf("%d days takeaway-free.", currTakeaway),
				Meta: map[string]any{
					"streak_type": "takeaway_free",
					"length":      currTakeaway,
				},
				Evidence: NewEvidence(dayStart, dayEnd, nil, map[string]float64{
					"length": float64(currTakeaway),
				}),
				Priority:      75,
				SchemaVersion: 1,
			})
		}

		if _, notable := NotableStreaks[currBudget]; notable {
			events = append(events, model.TimelineEvent{
				ID:         EventID(userID, "streak_update", "budget", d.String(), fmt.Sprint(currBudget)),
				Type:       model.EventStreakUpdate,
				OccurredAt: dayEnd,
				Title:      "Under-budget streak",
				Body:       fmt.Sprintf("%d days under budget.", currBudget),
				Meta: map[string]any{
					"streak_type": "under_daily_budget",
					"length":      currBudget,
				},
				Evidence: NewEvidence(dayStart, dayEnd, rollup.TransactionIDs, map[string]float64{
					"length":       float64(currBudget),
					"daily_budget": float64(dailyBudget),
				}),
				Priority:      75,
				SchemaVersion: 1,
			})
		}

		// A streak only breaks on an actual takeaway transaction; an
		// empty day keeps the run alive.
		if !takeOK && len(rollup.TakeawayTxnIDs) > 0 {
			events = append(events, model.TimelineEvent{
				ID:         EventID(userID, "streak_broken", "takeaway", d.String()),
				Type:       model.EventStreakBroken,
				OccurredAt: dayEnd,
				Title:      "Takeaway-free streak broken",
				Body:       "A takeaway transaction ended your streak.",
				Meta:       map[string]any{"streak_type": "takeaway_free"},
				Evidence: NewEvidence(dayStart, dayEnd, rollup.TakeawayTxnIDs, map[string]float64{
					"takeaway_transactions": float64(len(rollup.TakeawayTxnIDs)),
				}),
				Priority:      76,
				SchemaVersion: 1,
			})
		}

		if _, threshold := BreakthroughThresholds[currBudget]; threshold {
			key := BreakthroughKey(currBudget, d)
			fired, err := g.store.EnsureBreakthrough(ctx, userID, key, dayEnd)
			if err != nil {
				return nil, fmt.Errorf("failed to ensure breakthrough: %w", err)
			}
			if fired {
				slog.Info("Breakthrough unlocked", "user_id", userID, "key", key)
				events = append(events, breakthroughEvent(EventID(userID, "breakthrough", key), dayEnd, currBudget))
			}
		}
	}
	return events, nil
}

// takeawayCount sums takeaway transactions across a day set.
func takeawayCount(days []model.Date, rollups Rollups) int {
	total := 0
	for _, d := range days {
		total += len(rollups.Day(d).TakeawayTxnIDs)
	}
	return total
}

// underBudgetDays counts aligned days in a day set.
func underBudgetDays(days []model.Date, aligned map[model.Date]bool) int {
	count := 0
	for _, d := range days {
		if aligned[d] {
			count++
		}
	}
	return count
}

// monthlyEvents emits one framing card per month present in the history
// window, each evaluated against the previous month's statistics.
func (g *Generator) monthlyEvents(userID string, days []model.Date, rollups Rollups, budgetAligned map[model.Date]bool, loc *time.Location) []model.TimelineEvent {
	months := distinctPeriods(days, model.Date.MonthStart)

	var events []model.TimelineEvent
	for _, m := range months {
		prev := m.AddDays(-1).MonthStart()
		monthBefore := prev.AddDays(-1).MonthStart()

		prevDays := daysInPeriod(days, prev, model.Date.MonthStart)
		beforeDays := daysInPeriod(days, monthBefore, model.Date.MonthStart)

		under := underBudgetDays(prevDays, budgetAligned)
		longest := 0
		if len(prevDays) > 0 {
			longest = ComputeStreak(prevDays, budgetAligned).LongestLength
		}
		lastTakeaway := takeawayCount(prevDays, rollups)
		prevTakeaway := takeawayCount(beforeDays, rollups)

		events = append(events, monthlyEvent(m, under, longest, lastTakeaway, prevTakeaway, loc,
			EventID(userID, "monthly_framing", m.String())))
	}
	return events
}

// quarterlyEvents emits one review card per calendar quarter present in the
// history window.
func (g *Generator) quarterlyEvents(userID string, days []model.Date, rollups Rollups, budgetAligned map[model.Date]bool, loc *time.Location) []model.TimelineEvent {
	quarters := distinctPeriods(days, model.Date.QuarterStart)

	var events []model.TimelineEvent
	for _, q := range quarters {
		prevQuarter := q.AddDays(-1).QuarterStart()
		prevDays := daysInPeriod(days, prevQuarter, model.Date.QuarterStart)
		currDays := daysInPeriod(days, q, model.Date.QuarterStart)

		under := underBudgetDays(prevDays, budgetAligned)
		longest := 0
		if len(prevDays) > 0 {
			longest = ComputeStreak(prevDays, budgetAligned).LongestLength
		}
		quarterTakeaway := takeawayCount(prevDays, rollups)
		currTakeaway := takeawayCount(currDays, rollups)

		events = append(events, quarterlyEvent(q, under, longest, quarterTakeaway, currTakeaway, loc,
			EventID(userID, "quarterly_review", q.String())))
	}
	return events
}

// yearReview emits the three year-in-review cards during January.
func (g *Generator) yearReview(userID string, today model.Date, days []model.Date, rollups Rollups, budgetAligned map[model.Date]bool, loc *time.Location) []model.TimelineEvent {
	if today.Month != time.January {
		return nil
	}

	var prevYearDays []model.Date
	for _, d := range days {
		if d.Year == today.Year-1 {
			prevYearDays = append(prevYearDays, d)
		}
	}

	longest := 0
	if len(prevYearDays) > 0 {
		longest = ComputeStreak(prevYearDays, budgetAligned).LongestLength
	}
	under := underBudgetDays(prevYearDays, budgetAligned)
	takeaway := takeawayCount(prevYearDays, rollups)

	yearStart := model.Date{Year: today.Year, Month: time.January, Day: 1}
	var ids [3]string
	for i := range ids {
		ids[i] = EventID(userID, "year_review", yearStart.String(), fmt.Sprint(i+1))
	}
	return yearlyEvents(today.Year, loc, longest, under, takeaway, ids)
}

// distinctPeriods returns the ordered distinct period starts for a day set.
func distinctPeriods(days []model.Date, startOf func(model.Date) model.Date) []model.Date {
	seen := make(map[model.Date]struct{})
	var periods []model.Date
	for _, d := range days {
		p := startOf(d)
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			periods = append(periods, p)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods
}

// daysInPeriod filters days whose period start equals the given start.
func daysInPeriod(days []model.Date, start model.Date, startOf func(model.Date) model.Date) []model.Date {
	var out []model.Date
	for _, d := range days {
		if startOf(d) == start {
			out = append(out, d)
		}
	}
	return out
}

// sortEvents orders events descending by (occurrence instant, priority, id).
// The instant is primary, priority breaks ties on the same instant, and the
// deterministic id is the final tiebreak, giving a stable total order.
func sortEvents(events []model.TimelineEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].OccurredAt.After(events[j].OccurredAt)
		}
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		return events[i].ID > events[j].ID
	})
}
