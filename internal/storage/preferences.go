package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sammoorhouse/mentos/internal/common"
	"github.com/sammoorhouse/mentos/internal/model"
)

// GetPreferences returns the stored preferences for a user, or
// common.ErrNotFound when the user has no preference row. Callers fall back
// to defaults on ErrNotFound rather than failing.
func (s *SQLiteStorage) GetPreferences(ctx context.Context, userID string) (*model.Preferences, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var prefs model.Preferences
	var timezone, tone, quietStart, quietEnd sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, timezone, daily_budget, tone, quiet_start, quiet_end, max_notifications_per_day
		FROM user_preferences WHERE user_id = ?
	`, userID).Scan(
		&prefs.UserID, &timezone, &prefs.DailyBudget, &tone,
		&quietStart, &quietEnd, &prefs.MaxNotificationsPerDay,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}

	prefs.Timezone = timezone.String
	prefs.Tone = tone.String
	prefs.QuietHours = model.QuietHours{Start: quietStart.String, End: quietEnd.String}
	return &prefs, nil
}

// SavePreferences inserts or replaces a user's preference row.
func (s *SQLiteStorage) SavePreferences(ctx context.Context, prefs *model.Preferences) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if prefs == nil {
		return fmt.Errorf("%w: prefs", ErrNilParameter)
	}
	if err := validateString(prefs.UserID, "prefs.UserID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (
			user_id, timezone, daily_budget, tone, quiet_start, quiet_end, max_notifications_per_day
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			timezone = excluded.timezone,
			daily_budget = excluded.daily_budget,
			tone = excluded.tone,
			quiet_start = excluded.quiet_start,
			quiet_end = excluded.quiet_end,
			max_notifications_per_day = excluded.max_notifications_per_day,
			updated_at = CURRENT_TIMESTAMP
	`, prefs.UserID, prefs.Timezone, prefs.DailyBudget, prefs.Tone,
		prefs.QuietHours.Start, prefs.QuietHours.End, prefs.MaxNotificationsPerDay)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// SaveGoal inserts or replaces a goal row. A missing id is generated.
func (s *SQLiteStorage) SaveGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if goal == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if err := validateString(goal.UserID, "goal.UserID"); err != nil {
		return err
	}
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO goals (id, user_id, tag, focus, active)
		VALUES (?, ?, ?, ?, ?)
	`, goal.ID, goal.UserID, goal.Tag, goal.Focus, goal.Active)
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

// GetGoalSummary derives the compact goal view used by the spend context.
// Recent counts cover the trailing 30 days.
func (s *SQLiteStorage) GetGoalSummary(ctx context.Context, userID string) (*model.GoalSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	summary := &model.GoalSummary{
		ActiveGoalIDs:  []string{},
		ActiveGoalTags: []string{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tag FROM goals WHERE user_id = ? AND active = 1 ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		summary.ActiveGoalIDs = append(summary.ActiveGoalIDs, id)
		summary.ActiveGoalTags = append(summary.ActiveGoalTags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_breakthroughs
		WHERE user_id = ? AND occurred_at >= datetime('now', '-30 days')
	`, userID).Scan(&summary.RecentBreakthroughsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count breakthroughs: %w", err)
	}

	return summary, nil
}
