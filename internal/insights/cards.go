// Package insights implements the insight gating pipeline: the card
// catalog, the spend-context snapshot an external reasoner may cite, the
// evidence validator that rejects anything not traceable to that snapshot,
// and the notification gate.
package insights

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sammoorhouse/mentos/internal/common"
	"github.com/sammoorhouse/mentos/internal/model"
)

// MaxVibePromptLength caps the prompt text carried by one card.
const MaxVibePromptLength = 400

// SpendContextEvidenceKeys is the closed vocabulary of dot-paths an insight
// card may declare as required evidence. Every path resolves inside
// model.SpendContext; a card declaring anything else is a configuration
// error.
var SpendContextEvidenceKeys = map[string]struct{}{
	"windows.last_7d.totals_by_category_gbp":             {},
	"windows.last_7d.top_merchants_by_spend":             {},
	"windows.last_7d.top_merchants_by_frequency":         {},
	"windows.last_7d.late_night_tx_count":                {},
	"windows.last_7d.small_purchase_count":               {},
	"windows.last_14d.category_totals_gbp":               {},
	"windows.last_14d.merchant_frequency":                {},
	"windows.last_14d.top_merchants_by_spend":            {},
	"windows.last_30d.category_totals_gbp":               {},
	"windows.last_30d.merchant_frequency":                {},
	"windows.last_30d.recurring_merchants_candidates":    {},
	"windows.last_90d.baseline_by_category_gbp_per_week": {},
	"windows.last_90d.payday_candidates":                 {},
	"goals.active_goal_ids":                              {},
	"goals.active_goal_tags":                             {},
	"goals.recent_breakthroughs_count":                   {},
	"goals.recent_drift_events_count":                    {},
	"preferences.tone":                                   {},
}

// requiredCardFields must all be present in a card definition.
var requiredCardFields = []string{
	"id", "title", "vibe_prompt", "goal_tags",
	"evidence_keys_required", "cooldown", "priority",
}

// LoadCards reads every *.json card definition in dir, validates the set,
// and returns the enabled cards sorted by ascending priority (insertion
// order breaks ties). Malformed definitions, unknown evidence keys and
// duplicate ids fail hard: they are configuration-integrity errors, never
// silently dropped.
func LoadCards(dir string) ([]model.InsightCard, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list card definitions: %w", err)
	}
	sort.Strings(paths)

	var cards []model.InsightCard
	seen := make(map[string]struct{})
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // catalog dir is operator-controlled
		if err != nil {
			return nil, fmt.Errorf("failed to read card %s: %w", path, err)
		}

		card, err := parseCard(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}

		if _, dup := seen[card.ID]; dup {
			return nil, fmt.Errorf("%w: %s", common.ErrDuplicateID, card.ID)
		}
		seen[card.ID] = struct{}{}

		if card.Enabled {
			cards = append(cards, card)
		}
	}

	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Priority < cards[j].Priority })
	return cards, nil
}

// parseCard decodes and validates a single card definition.
func parseCard(data []byte) (model.InsightCard, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.InsightCard{}, fmt.Errorf("%w: %v", common.ErrInvalidCard, err)
	}

	for _, field := range requiredCardFields {
		if _, ok := raw[field]; !ok {
			return model.InsightCard{}, fmt.Errorf("%w: missing required field: %s", common.ErrInvalidCard, field)
		}
	}

	card := model.InsightCard{Enabled: true}
	if err := json.Unmarshal(data, &card); err != nil {
		return model.InsightCard{}, fmt.Errorf("%w: %v", common.ErrInvalidCard, err)
	}

	if len(card.VibePrompt) > MaxVibePromptLength {
		return model.InsightCard{}, fmt.Errorf("%w: vibe_prompt too long for %s", common.ErrInvalidCard, card.ID)
	}
	for _, key := range card.EvidenceKeysRequired {
		if _, ok := SpendContextEvidenceKeys[key]; !ok {
			return model.InsightCard{}, fmt.Errorf("%w: invalid evidence key %s in %s", common.ErrInvalidCard, key, card.ID)
		}
	}
	return card, nil
}

// CardsByID indexes a card slice for lookup.
func CardsByID(cards []model.InsightCard) map[string]model.InsightCard {
	byID := make(map[string]model.InsightCard, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}
	return byID
}
