package insights

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sammoorhouse/mentos/internal/model"
)

// Suppression names a match the gate held back and why.
type Suppression struct {
	InsightID string `json:"insight_id"`
	Reason    string `json:"reason"`
}

// Suppression reasons, in gate precedence order.
const (
	ReasonQuietHours   = "quiet_hours"
	ReasonDailyCap     = "daily_cap"
	ReasonDedupe       = "dedupe"
	ReasonMaxFires30d  = "max_fires_per_30d"
	ReasonCooldownDays = "cooldown_days"
)

// ErrUnknownCard is returned when a match references a card id that is not
// in the loaded catalog.
var ErrUnknownCard = errors.New("unknown insight card")

// GateDecision is the outcome of running validated matches through the
// notification policy. Every input match lands in exactly one list.
type GateDecision struct {
	Allowed    []model.Match
	Suppressed []Suppression
}

// DedupeKey fingerprints an insight firing: same card, same week, same
// evidence hashes to the same key.
func DedupeKey(insightID string, now time.Time, evidence map[string]any) (string, error) {
	signature, err := canonicalJSON(evidence)
	if err != nil {
		return "", err
	}
	weekStart := model.LocalDay(now, now.Location()).WeekStart().String()
	base := fmt.Sprintf("%s:%s:%s", insightID, weekStart, signature)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(base))), nil
}

// ApplyNotificationPolicy decides which validated matches may be delivered.
// Checks run in fixed precedence: quiet hours short-circuit everything,
// then the daily cap, dedupe, the rolling 30-day cap and the per-card
// cooldown, each recording the first reason that suppresses a match.
func ApplyNotificationPolicy(matches []model.Match, prefs model.Preferences, previous []model.NotificationRecord, cards []model.InsightCard, now time.Time, tzName string) (*GateDecision, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tzName, err)
	}
	now = now.In(loc)
	settings := preferenceSummary(prefs)
	byID := CardsByID(cards)

	decision := &GateDecision{Allowed: []model.Match{}, Suppressed: []Suppression{}}

	inQuiet, err := inQuietHours(now, settings.QuietHours)
	if err != nil {
		return nil, err
	}
	if inQuiet {
		for _, match := range matches {
			decision.Suppressed = append(decision.Suppressed, Suppression{InsightID: match.InsightID, Reason: ReasonQuietHours})
		}
		return decision, nil
	}

	today := now.Format("2006-01-02")
	sentToday := 0
	for i := range previous {
		record := &previous[i]
		if record.Status == model.NotificationSent && record.SentAt.In(loc).Format("2006-01-02") == today {
			sentToday++
		}
	}

	for _, match := range matches {
		card, known := byID[match.InsightID]
		if !known {
			return nil, fmt.Errorf("%w: unknown card %q", ErrUnknownCard, match.InsightID)
		}

		if len(decision.Allowed)+sentToday >= settings.MaxNotificationsPerDay {
			decision.Suppressed = append(decision.Suppressed, Suppression{InsightID: match.InsightID, Reason: ReasonDailyCap})
			continue
		}

		key, err := DedupeKey(match.InsightID, now, match.Evidence)
		if err != nil {
			return nil, err
		}

		prior := priorSent(previous, match.InsightID)
		if hasDedupeKey(prior, key) {
			decision.Suppressed = append(decision.Suppressed, Suppression{InsightID: match.InsightID, Reason: ReasonDedupe})
			continue
		}

		if countSince(prior, now.AddDate(0, 0, -30)) >= card.Cooldown.MaxFiresPer30d {
			decision.Suppressed = append(decision.Suppressed, Suppression{InsightID: match.InsightID, Reason: ReasonMaxFires30d})
			continue
		}

		if last, ok := lastSentAt(prior); ok && last.After(now.AddDate(0, 0, -card.Cooldown.MinDaysBetweenFires)) {
			decision.Suppressed = append(decision.Suppressed, Suppression{InsightID: match.InsightID, Reason: ReasonCooldownDays})
			continue
		}

		match.DedupeKey = key
		decision.Allowed = append(decision.Allowed, match)
	}

	return decision, nil
}

// SerializeNotification builds the delivery-history row recorded for a
// gated match, whatever the outcome.
func SerializeNotification(userID string, match model.Match, status string, now time.Time) (model.NotificationRecord, error) {
	signature, err := canonicalJSON(match.Evidence)
	if err != nil {
		return model.NotificationRecord{}, err
	}
	payload := map[string]any{
		"insight_id": match.InsightID,
		"message":    match.Message,
		"evidence":   match.Evidence,
	}
	if match.DedupeKey != "" {
		payload["dedupe_key"] = match.DedupeKey
	}
	return model.NotificationRecord{
		UserID:            userID,
		InsightID:         match.InsightID,
		DedupeKey:         match.DedupeKey,
		EvidenceSignature: signature,
		Status:            status,
		SentAt:            now,
		Payload:           payload,
	}, nil
}

// inQuietHours reports whether now falls inside the quiet window. The
// window may wrap midnight, in which case it covers the evening and the
// following morning.
func inQuietHours(now time.Time, window model.QuietHours) (bool, error) {
	start, err := atClock(now, window.Start)
	if err != nil {
		return false, err
	}
	end, err := atClock(now, window.End)
	if err != nil {
		return false, err
	}
	if !start.After(end) {
		return !now.Before(start) && now.Before(end), nil
	}
	return !now.Before(start) || now.Before(end), nil
}

// atClock pins an HH:MM clock reading onto now's date.
func atClock(now time.Time, clock string) (time.Time, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid quiet hours time %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid quiet hours time %q: %w", clock, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid quiet hours time %q: %w", clock, err)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), nil
}

func priorSent(previous []model.NotificationRecord, insightID string) []model.NotificationRecord {
	var prior []model.NotificationRecord
	for i := range previous {
		record := &previous[i]
		if record.InsightID == insightID && record.Status == model.NotificationSent {
			prior = append(prior, *record)
		}
	}
	return prior
}

func hasDedupeKey(records []model.NotificationRecord, key string) bool {
	for i := range records {
		if records[i].DedupeKey == key {
			return true
		}
	}
	return false
}

func countSince(records []model.NotificationRecord, cutoff time.Time) int {
	count := 0
	for i := range records {
		if !records[i].SentAt.Before(cutoff) {
			count++
		}
	}
	return count
}

func lastSentAt(records []model.NotificationRecord) (time.Time, bool) {
	var last time.Time
	for i := range records {
		if records[i].SentAt.After(last) {
			last = records[i].SentAt
		}
	}
	return last, !last.IsZero()
}

// canonicalJSON encodes evidence with sorted object keys, matching the
// signature stored alongside each notification.
func canonicalJSON(evidence map[string]any) (string, error) {
	if evidence == nil {
		evidence = map[string]any{}
	}
	data, err := json.Marshal(evidence)
	if err != nil {
		return "", fmt.Errorf("failed to encode evidence: %w", err)
	}
	return string(data), nil
}
