package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/sammoorhouse/mentos/internal/model"
)

// percentChange returns the rounded month-over-month (or period-over-period)
// percentage change, or 0 when there is no previous value to compare against.
func percentChange(current, previous int) int {
	if previous <= 0 {
		return 0
	}
	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// monthlyEvent builds the "set your month direction" card from the prior
// month's statistics.
func monthlyEvent(monthStart model.Date, underBudgetDays, longestStreak int, lastMonthTakeaway, prevTakeaway int, loc *time.Location, eventID string) model.TimelineEvent {
	delta := percentChange(lastMonthTakeaway, prevTakeaway)
	previous := int64(lastMonthTakeaway)
	if previous < 1 {
		previous = 1
	}
	target := SuggestedTarget(previous, 1.3)
	targets := []map[string]any{
		{"focus": "takeaway_spend", "period": "month", "amount": target},
	}

	body := fmt.Sprintf("Last month: %d under-budget days, longest streak %d days.", underBudgetDays, longestStreak)
	if prevTakeaway > 0 {
		body += fmt.Sprintf(" Takeaway spend changed %d%% month-over-month.", delta)
	}

	at := monthStart.Time(loc)
	return model.TimelineEvent{
		ID:         eventID,
		Type:       model.EventMonthlyFraming,
		OccurredAt: at,
		Title:      "Set your month direction",
		Body:       body,
		Meta: map[string]any{
			"month_start":       monthStart.String(),
			"suggested_targets": targets,
		},
		Evidence: NewEvidence(at, at, nil, map[string]float64{
			"under_budget_days":  float64(underBudgetDays),
			"longest_streak":     float64(longestStreak),
			"takeaway_delta_pct": float64(delta),
		}),
		Actions: []model.TimelineAction{
			{
				ID:         "accept_targets",
				Label:      "Take this direction",
				Kind:       model.ActionPrimary,
				ActionType: model.ActionAcceptTargets,
				Payload:    map[string]any{"targets": targets},
			},
			{
				ID:         "open_goal_realign",
				Label:      "Choose a different focus",
				Kind:       model.ActionSecondary,
				ActionType: model.ActionOpenGoalRealign,
				Payload:    map[string]any{},
			},
		},
		Priority:      80,
		SchemaVersion: 1,
	}
}

// quarterlyEvent builds the quarterly review card.
func quarterlyEvent(quarterStart model.Date, underBudgetDays, longestStreak int, quarterTakeaway, prevTakeaway int, loc *time.Location, eventID string) model.TimelineEvent {
	previous := int64(quarterTakeaway)
	if previous < 1 {
		previous = 1
	}
	target := SuggestedTarget(previous, 1.2)
	delta := percentChange(quarterTakeaway, prevTakeaway)
	targets := []map[string]any{
		{"focus": "takeaway_spend", "period": "quarter", "amount": target},
	}

	at := quarterStart.Time(loc)
	return model.TimelineEvent{
		ID:         eventID,
		Type:       model.EventQuarterlyReview,
		OccurredAt: at,
		Title:      "Quarterly review",
		Body: fmt.Sprintf("%d under-budget days and a longest streak of %d days. Takeaway trend: %d%%.",
			underBudgetDays, longestStreak, delta),
		Meta: map[string]any{
			"quarter_start":     quarterStart.String(),
			"suggested_targets": targets,
		},
		Evidence: NewEvidence(at, at, nil, map[string]float64{
			"under_budget_days":  float64(underBudgetDays),
			"longest_streak":     float64(longestStreak),
			"takeaway_delta_pct": float64(delta),
		}),
		Actions: []model.TimelineAction{
			{
				ID:         "accept_targets",
				Label:      "Take this direction",
				Kind:       model.ActionPrimary,
				ActionType: model.ActionAcceptTargets,
				Payload:    map[string]any{"targets": targets},
			},
			{
				ID:         "open_goal_realign",
				Label:      "Choose a different focus",
				Kind:       model.ActionSecondary,
				ActionType: model.ActionOpenGoalRealign,
				Payload:    map[string]any{},
			},
		},
		Priority:      85,
		SchemaVersion: 1,
	}
}

// yearlyEvents builds the three year-review cards: overview, biggest shift,
// and build-on-momentum. They share the same instant but carry distinct ids
// and descending priorities so their relative order is fixed.
func yearlyEvents(year int, loc *time.Location, longestStreak, underBudgetDays int, takeawayTotal int, eventIDs [3]string) []model.TimelineEvent {
	when := model.Date{Year: year, Month: time.January, Day: 1}.Time(loc)
	return []model.TimelineEvent{
		{
			ID:         eventIDs[0],
			Type:       model.EventYearReview,
			OccurredAt: when,
			Title:      fmt.Sprintf("Your %d in review", year-1),
			Body:       "A quick look at your progress over the last year.",
			Meta:       map[string]any{"card": 1},
			Evidence: NewEvidence(when, when, nil, map[string]float64{
				"year": float64(year - 1),
			}),
			Actions:       []model.TimelineAction{},
			Priority:      95,
			SchemaVersion: 1,
		},
		{
			ID:         eventIDs[1],
			Type:       model.EventYearReview,
			OccurredAt: when,
			Title:      "Biggest shift",
			Body:       fmt.Sprintf("Longest streak: %d days.", longestStreak),
			Meta:       map[string]any{"card": 2},
			Evidence: NewEvidence(when, when, nil, map[string]float64{
				"longest_streak": float64(longestStreak),
			}),
			Actions:       []model.TimelineAction{},
			Priority:      94,
			SchemaVersion: 1,
		},
		{
			ID:         eventIDs[2],
			Type:       model.EventYearReview,
			OccurredAt: when,
			Title:      "Build on momentum",
			Body: fmt.Sprintf("%d under-budget days and takeaway spend %d this year.",
				underBudgetDays, takeawayTotal),
			Meta: map[string]any{"card": 3},
			Evidence: NewEvidence(when, when, nil, map[string]float64{
				"under_budget_days": float64(underBudgetDays),
				"takeaway_total":    float64(takeawayTotal),
			}),
			Actions: []model.TimelineAction{
				{
					ID:         "open_goal_realign",
					Label:      "Set this year's goals",
					Kind:       model.ActionPrimary,
					ActionType: model.ActionOpenGoalRealign,
					Payload:    map[string]any{},
				},
			},
			Priority:      93,
			SchemaVersion: 1,
		},
	}
}
