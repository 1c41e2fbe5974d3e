package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sammoorhouse/mentos/internal/model"
)

// SaveNotification persists one delivery-history row. A missing id is
// generated.
func (s *SQLiteStorage) SaveNotification(ctx context.Context, record *model.NotificationRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotification(record); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	payloadJSON := ""
	if record.Payload != nil {
		data, err := json.Marshal(record.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		payloadJSON = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, user_id, insight_id, dedupe_key, evidence_signature, status, sent_at, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.UserID, record.InsightID, record.DedupeKey,
		record.EvidenceSignature, record.Status, record.SentAt.UTC(), payloadJSON)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// GetNotifications returns a user's notification history from the given
// instant onwards, ordered by sent time ascending.
func (s *SQLiteStorage) GetNotifications(ctx context.Context, userID string, since time.Time) ([]model.NotificationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, insight_id, dedupe_key, evidence_signature, status, sent_at, payload
		FROM notifications
		WHERE user_id = ? AND sent_at >= ?
		ORDER BY sent_at ASC
	`, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.NotificationRecord
	for rows.Next() {
		var record model.NotificationRecord
		var signature, payloadJSON sql.NullString
		if err := rows.Scan(
			&record.ID, &record.UserID, &record.InsightID, &record.DedupeKey,
			&signature, &record.Status, &record.SentAt, &payloadJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		record.EvidenceSignature = signature.String
		if payloadJSON.String != "" {
			if err := json.Unmarshal([]byte(payloadJSON.String), &record.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload for %s: %w", record.ID, err)
			}
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return records, nil
}
