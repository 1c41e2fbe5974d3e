package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sammoorhouse/mentos/internal/model"
)

func TestFormatPence(t *testing.T) {
	tests := []struct {
		pence    int64
		expected string
	}{
		{0, "£0.00"},
		{5, "£0.05"},
		{100, "£1.00"},
		{2550, "£25.50"},
		{123456, "£1234.56"},
		{-999, "-£9.99"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatPence(tt.pence))
	}
}

func TestRenderEvent(t *testing.T) {
	event := model.TimelineEvent{
		ID:         "abc",
		Type:       model.EventMonthlyFraming,
		OccurredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Title:      "Set your month direction",
		Body:       "Last month: 12 under-budget days.",
		Actions: []model.TimelineAction{
			{ID: "accept_targets", Label: "Take this direction", Kind: model.ActionPrimary},
			{ID: "open_goal_realign", Label: "Choose a different focus", Kind: model.ActionSecondary},
		},
		Priority: 80,
	}

	out := RenderEvent(&event)
	assert.Contains(t, out, "Set your month direction")
	assert.Contains(t, out, "Last month: 12 under-budget days.")
	assert.Contains(t, out, "▸ Take this direction (accept_targets)")
	assert.Contains(t, out, "• Choose a different focus (open_goal_realign)")
	assert.Contains(t, out, "Sun 1 Mar 2026")
}

func TestRenderTimelinePage(t *testing.T) {
	var b strings.Builder
	RenderTimelinePage(&b, &model.TimelinePage{Events: []model.TimelineEvent{}})
	assert.Contains(t, b.String(), "No timeline events yet")

	b.Reset()
	RenderTimelinePage(&b, &model.TimelinePage{
		NextCursor: "NQ==",
		Events: []model.TimelineEvent{
			{Type: model.EventStreakUpdate, Title: "Under-budget streak", Body: "5 days under budget."},
		},
	})
	assert.Contains(t, b.String(), "5 days under budget.")
	assert.Contains(t, b.String(), "Next cursor: NQ==")
}
