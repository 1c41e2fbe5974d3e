package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sammoorhouse/mentos/internal/common"
	"github.com/sammoorhouse/mentos/internal/model"
	"github.com/sammoorhouse/mentos/internal/service"
)

// ActionResult reports the outcome of a posted timeline action.
type ActionResult struct {
	Accepted           bool     `json:"accepted"`
	CreatedSideEffects []string `json:"created_side_effects"`
}

// PostTimelineAction handles a user's follow-up on a timeline event.
// accept_targets persists the target rows carried in the payload; the other
// recognized actions have no durable side effect here and are audit-logged
// only. Unrecognized action ids are rejected.
func PostTimelineAction(ctx context.Context, store service.Storage, userID, actionID string, payload map[string]any, now time.Time) (*ActionResult, error) {
	switch model.ActionType(actionID) {
	case model.ActionAcceptTargets:
		targets, err := parseTargets(userID, payload, now)
		if err != nil {
			return nil, err
		}
		if err := store.SaveTargets(ctx, targets); err != nil {
			return nil, fmt.Errorf("failed to persist targets: %w", err)
		}
		ids := make([]string, len(targets))
		for i, t := range targets {
			ids[i] = t.ID
		}
		slog.Info("Accepted targets", "user_id", userID, "count", len(ids))
		return &ActionResult{Accepted: true, CreatedSideEffects: ids}, nil

	case model.ActionOpenGoalRealign, model.ActionViewInsight, model.ActionOpenSettings:
		slog.Info("Timeline action", "user_id", userID, "action", actionID)
		return &ActionResult{Accepted: true, CreatedSideEffects: []string{}}, nil

	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownAction, actionID)
	}
}

// parseTargets extracts target rows from an accept_targets payload of the
// form {"targets": [{"focus": ..., "period": ..., "amount": ...}]}.
func parseTargets(userID string, payload map[string]any, now time.Time) ([]model.Target, error) {
	raw, ok := payload["targets"].([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("%w: payload must contain a targets list", common.ErrInvalidConfig)
	}

	targets := make([]model.Target, 0, len(raw))
	for i, entry := range raw {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: target %d must be an object", common.ErrInvalidConfig, i)
		}
		focus, _ := fields["focus"].(string)
		period, _ := fields["period"].(string)
		amount, ok := toInt64(fields["amount"])
		if focus == "" || period == "" || !ok {
			return nil, fmt.Errorf("%w: target %d missing focus, period or amount", common.ErrInvalidConfig, i)
		}
		targets = append(targets, model.Target{
			UserID:     userID,
			Focus:      focus,
			Period:     period,
			Amount:     amount,
			AcceptedAt: now,
		})
	}
	return targets, nil
}

// toInt64 accepts the numeric types a JSON-decoded payload may carry.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
