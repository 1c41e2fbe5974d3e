package model

import "time"

// InsightCooldown limits how often a card may fire for a user.
type InsightCooldown struct {
	MinDaysBetweenFires int `json:"min_days_between_fires"`
	MaxFiresPer30d      int `json:"max_fires_per_30d"`
}

// InsightCard is a static, user-independent definition of one permitted
// coaching message: its prompt, the evidence it must cite, and its cooldown
// contract. Cards are loaded from the catalog and validated at load time.
type InsightCard struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	VibePrompt           string          `json:"vibe_prompt"`
	GoalTags             []string        `json:"goal_tags"`
	EvidenceKeysRequired []string        `json:"evidence_keys_required"`
	Examples             []string        `json:"examples,omitempty"`
	Cooldown             InsightCooldown `json:"cooldown"`
	Priority             int             `json:"priority"`
	Enabled              bool            `json:"enabled"`
}

// Match is one claimed insight produced by an external reasoner. It is
// untrusted until the evidence validator has checked it against the spend
// context. DedupeKey is attached by the notification gate when the match
// is allowed through.
type Match struct {
	InsightID string         `json:"insight_id"`
	Message   string         `json:"message"`
	DedupeKey string         `json:"dedupe_key,omitempty"`
	Evidence  map[string]any `json:"evidence"`
}

// NotificationRecord is one row of delivery history, read by the gate to
// evaluate dedupe, rolling caps and cooldowns.
type NotificationRecord struct {
	SentAt            time.Time
	ID                string
	UserID            string
	InsightID         string
	DedupeKey         string
	EvidenceSignature string
	Status            string
	Payload           map[string]any
}

// NotificationStatus values stored on NotificationRecord.
const (
	NotificationSent       = "sent"
	NotificationSuppressed = "suppressed"
)

// QuietHours is a local-time window during which no notifications are
// delivered. The window may wrap midnight (e.g. 22:00-07:00).
type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Preferences holds a user's notification and budget settings. Zero values
// fall back to safe defaults when read by the timeline and the gate.
type Preferences struct {
	UserID                 string
	Timezone               string
	Tone                   string
	QuietHours             QuietHours
	DailyBudget            int64
	MaxNotificationsPerDay int
}

// GoalSummary is the compact view of a user's goals exposed to the spend
// context. It is derived from durable rows by the storage layer.
type GoalSummary struct {
	ActiveGoalIDs            []string `json:"active_goal_ids"`
	ActiveGoalTags           []string `json:"active_goal_tags"`
	RecentBreakthroughsCount int      `json:"recent_breakthroughs_count"`
	RecentDriftEventsCount   int      `json:"recent_drift_events_count"`
}

// Goal is a durable user goal row.
type Goal struct {
	CreatedAt time.Time
	ID        string
	UserID    string
	Tag       string
	Focus     string
	Active    bool
}
