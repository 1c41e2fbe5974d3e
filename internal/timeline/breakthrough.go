package timeline

import (
	"fmt"
	"time"

	"github.com/sammoorhouse/mentos/internal/model"
)

// BreakthroughThresholds are the under-budget streak lengths that unlock a
// one-time breakthrough. Deliberately coarser than NotableStreaks.
var BreakthroughThresholds = map[int]struct{}{7: {}, 14: {}, 30: {}}

// BreakthroughKey is the durable uniqueness key for one unlock: a given
// (user, key) pair fires at most once, ever.
func BreakthroughKey(streakLen int, day model.Date) string {
	return fmt.Sprintf("budget_streak_%d_%s", streakLen, day)
}

// breakthroughEvent builds the celebration card for a newly granted
// breakthrough.
func breakthroughEvent(eventID string, occurredAt time.Time, streakLen int) model.TimelineEvent {
	return model.TimelineEvent{
		ID:         eventID,
		Type:       model.EventBreakthrough,
		OccurredAt: occurredAt,
		Title:      "Breakthrough unlocked",
		Body:       fmt.Sprintf("You hit a %d-day streak. Ready to raise your targets?", streakLen),
		Meta: map[string]any{
			"celebration_type": "fireworks",
			"streak_length":    streakLen,
		},
		Evidence: NewEvidence(occurredAt, occurredAt, nil, map[string]float64{
			"streak_length": float64(streakLen),
		}),
		Actions: []model.TimelineAction{
			{
				ID:         "open_goal_realign",
				Label:      "You've hit a savings breakthrough—ready to invest?",
				Kind:       model.ActionPrimary,
				ActionType: model.ActionOpenGoalRealign,
				Payload:    map[string]any{},
			},
		},
		Priority:      90,
		SchemaVersion: 1,
	}
}
