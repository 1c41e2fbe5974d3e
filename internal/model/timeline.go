package model

import "time"

// EventType enumerates the kinds of timeline events.
type EventType string

// Timeline event kinds.
const (
	EventStatus          EventType = "status"
	EventWeeklyProgress  EventType = "weekly_progress"
	EventInsight         EventType = "insight"
	EventGoalUpdate      EventType = "goal_update"
	EventBreakthrough    EventType = "breakthrough"
	EventStreakUpdate    EventType = "streak_update"
	EventStreakBroken    EventType = "streak_broken"
	EventMonthlyFraming  EventType = "monthly_framing"
	EventQuarterlyReview EventType = "quarterly_review"
	EventYearReview      EventType = "year_review"
)

// ActionKind distinguishes primary from secondary actions.
type ActionKind string

// Action kinds.
const (
	ActionPrimary   ActionKind = "primary"
	ActionSecondary ActionKind = "secondary"
)

// ActionType enumerates the recognized follow-up actions.
type ActionType string

// Action types.
const (
	ActionAcceptTargets   ActionType = "accept_targets"
	ActionOpenGoalRealign ActionType = "open_goal_realign"
	ActionViewInsight     ActionType = "view_insight"
	ActionOpenSettings    ActionType = "open_settings"
)

// DateRange is a half-open span of instants attached to evidence.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Evidence justifies an event with the transactions, period and metrics
// it was derived from.
type Evidence struct {
	TransactionIDs []string           `json:"transaction_ids"`
	DateRange      DateRange          `json:"date_range"`
	Metrics        map[string]float64 `json:"metrics"`
}

// TimelineAction is a user-facing follow-up attached to an event.
type TimelineAction struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Kind       ActionKind     `json:"kind"`
	ActionType ActionType     `json:"action_type"`
	Payload    map[string]any `json:"payload"`
}

// TimelineEvent is one unit of the feed. Events are regenerated on every
// request; the id is derived deterministically from the event's content so
// identical input data always produces identical ids and ordering.
type TimelineEvent struct {
	OccurredAt    time.Time        `json:"occurred_at"`
	ID            string           `json:"id"`
	Type          EventType        `json:"type"`
	Title         string           `json:"title"`
	Body          string           `json:"body"`
	Meta          map[string]any   `json:"meta"`
	Evidence      Evidence         `json:"evidence"`
	Actions       []TimelineAction `json:"actions"`
	Priority      int              `json:"priority"`
	SchemaVersion int              `json:"schema_version"`
}

// TimelinePage is one page of the ordered feed. NextCursor is empty when no
// further events remain.
type TimelinePage struct {
	NextCursor string          `json:"next_cursor,omitempty"`
	Events     []TimelineEvent `json:"events"`
}

// Target is a durable focus/period/amount row created when the user accepts
// a suggested direction.
type Target struct {
	AcceptedAt time.Time
	ID         string
	UserID     string
	Focus      string
	Period     string
	Amount     int64
}
