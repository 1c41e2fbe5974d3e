package insights

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammoorhouse/mentos/internal/model"
	"github.com/sammoorhouse/mentos/internal/testutil"
)

func validatorFixture(t *testing.T) (*model.SpendContext, []model.InsightCard) {
	t.Helper()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	transactions := []model.Transaction{
		testutil.Spend("tx-1", "alice", now.AddDate(0, 0, -2), 1250, "Deliveroo", "delivery"),
		testutil.Spend("tx-2", "alice", now.AddDate(0, 0, -3), 850, "Deliveroo", "delivery"),
	}
	sctx, err := BuildSpendContext(transactions, model.GoalSummary{}, model.Preferences{}, now, "Europe/London")
	require.NoError(t, err)

	cards := []model.InsightCard{
		{
			ID:                   "delivery_creep",
			Title:                "Delivery creep",
			VibePrompt:           "p",
			EvidenceKeysRequired: []string{"windows.last_7d.totals_by_category_gbp"},
			Cooldown:             model.InsightCooldown{MinDaysBetweenFires: 7, MaxFiresPer30d: 2},
			Priority:             40,
			Enabled:              true,
		},
		{
			ID:       "late_night_spend",
			Title:    "Late night spend",
			Cooldown: model.InsightCooldown{MinDaysBetweenFires: 14, MaxFiresPer30d: 1},
			Priority: 60,
			Enabled:  true,
		},
	}
	return sctx, cards
}

// groundedMatch builds a match whose evidence value is copied from the
// context itself, exactly as an honest reasoner would.
func groundedMatch(t *testing.T, sctx *model.SpendContext) map[string]any {
	t.Helper()
	payload, err := contextAsMap(sctx)
	require.NoError(t, err)
	value, found := resolvePath(payload, "windows.last_7d.totals_by_category_gbp")
	require.True(t, found)
	return map[string]any{
		"insight_id": "delivery_creep",
		"message":    "Delivery spend is creeping up this week.",
		"evidence":   map[string]any{"windows.last_7d.totals_by_category_gbp": value},
	}
}

func validate(t *testing.T, response map[string]any, sctx *model.SpendContext, cards []model.InsightCard) *ValidationResult {
	t.Helper()
	raw, err := json.Marshal(response)
	require.NoError(t, err)
	result, err := ValidateLLMResponse(raw, sctx, cards, DefaultMaxMatches)
	require.NoError(t, err)
	return result
}

func TestValidateGroundedMatch(t *testing.T) {
	sctx, cards := validatorFixture(t)

	result := validate(t, map[string]any{
		"matches":     []any{groundedMatch(t, sctx)},
		"non_matches": []any{"late_night_spend"},
	}, sctx, cards)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "delivery_creep", result.Matches[0].InsightID)
	assert.Equal(t, "Delivery spend is creeping up this week.", result.Matches[0].Message)
	assert.Contains(t, result.Matches[0].Evidence, "windows.last_7d.totals_by_category_gbp")
}

func TestValidateMatchesMustBeList(t *testing.T) {
	sctx, cards := validatorFixture(t)

	result := validate(t, map[string]any{"matches": "nope"}, sctx, cards)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "matches must be a list")
}

func TestValidateNonMatchesMustBeList(t *testing.T) {
	sctx, cards := validatorFixture(t)

	result := validate(t, map[string]any{
		"matches":     []any{},
		"non_matches": "nope",
	}, sctx, cards)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "non_matches must be a list")
}

func TestValidateTooManyMatches(t *testing.T) {
	sctx, cards := validatorFixture(t)

	match := groundedMatch(t, sctx)
	result := validate(t, map[string]any{
		"matches": []any{match, match, match, match},
	}, sctx, cards)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "too many matches: 4 > 3")
}

func TestValidateUnknownInsightID(t *testing.T) {
	sctx, cards := validatorFixture(t)

	result := validate(t, map[string]any{
		"matches": []any{map[string]any{"insight_id": "made_up", "evidence": map[string]any{}}},
	}, sctx, cards)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "match[0] unknown insight_id: made_up")
}

func TestValidateEvidenceMustBeObject(t *testing.T) {
	sctx, cards := validatorFixture(t)

	result := validate(t, map[string]any{
		"matches": []any{map[string]any{"insight_id": "delivery_creep", "evidence": "nope"}},
	}, sctx, cards)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "match[0] evidence must be object")
}

func TestValidateMissingRequiredEvidenceKeys(t *testing.T) {
	sctx, cards := validatorFixture(t)

	result := validate(t, map[string]any{
		"matches": []any{map[string]any{"insight_id": "delivery_creep", "evidence": map[string]any{}}},
	}, sctx, cards)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "match[0] missing required evidence keys")
}

func TestValidateInvalidEvidencePath(t *testing.T) {
	sctx, cards := validatorFixture(t)

	match := groundedMatch(t, sctx)
	evidence := match["evidence"].(map[string]any)
	evidence["windows.last_7d.bad"] = 1

	result := validate(t, map[string]any{"matches": []any{match}}, sctx, cards)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "match[0] invalid evidence path: windows.last_7d.bad")
}

func TestValidateEvidenceMismatch(t *testing.T) {
	sctx, cards := validatorFixture(t)

	// Claims a delivery total the context does not support
	result := validate(t, map[string]any{
		"matches": []any{map[string]any{
			"insight_id": "delivery_creep",
			"evidence": map[string]any{
				"windows.last_7d.totals_by_category_gbp": map[string]any{"delivery": 999.99},
			},
		}},
	}, sctx, cards)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "match[0] evidence mismatch for path: windows.last_7d.totals_by_category_gbp")
	assert.Empty(t, result.Matches)
}

func TestValidateMalformedResponse(t *testing.T) {
	sctx, cards := validatorFixture(t)

	_, err := ValidateLLMResponse([]byte("not json"), sctx, cards, DefaultMaxMatches)
	assert.Error(t, err)
}
