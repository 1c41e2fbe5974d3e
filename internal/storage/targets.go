package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sammoorhouse/mentos/internal/model"
)

// SaveTargets persists target rows accepted from a framing event. Missing
// ids are generated.
func (s *SQLiteStorage) SaveTargets(ctx context.Context, targets []model.Target) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTargets(targets); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO targets (id, user_id, focus, period, amount, accepted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range targets {
		if targets[i].ID == "" {
			targets[i].ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			targets[i].ID, targets[i].UserID, targets[i].Focus,
			targets[i].Period, targets[i].Amount, targets[i].AcceptedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to save target %s: %w", targets[i].ID, err)
		}
	}

	return tx.Commit()
}
