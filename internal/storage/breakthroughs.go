package storage

import (
	"context"
	"fmt"
	"time"
)

// EnsureBreakthrough records a breakthrough the first time it is seen and
// reports whether this call created it. The UNIQUE(user_id, breakthrough_key)
// index makes the check-and-insert atomic: when concurrent callers race on
// the same key, exactly one insert succeeds and the rest observe fired=false.
func (s *SQLiteStorage) EnsureBreakthrough(ctx context.Context, userID, key string, occurredAt time.Time) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return false, err
	}
	if err := validateString(key, "key"); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_breakthroughs (user_id, breakthrough_key, occurred_at)
		VALUES (?, ?, ?)
	`, userID, key, occurredAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to record breakthrough: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}
