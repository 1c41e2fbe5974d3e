package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sammoorhouse/mentos/internal/model"
)

type promptCard struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	VibePrompt           string   `json:"vibe_prompt"`
	EvidenceKeysRequired []string `json:"evidence_keys_required"`
	GoalTags             []string `json:"goal_tags"`
	Priority             int      `json:"priority"`
}

// BuildPrompt renders the reasoner prompt: instructions, the output
// schema, the card catalog and the spend context, all as JSON the
// validator can later hold the response against.
func BuildPrompt(sctx *model.SpendContext, cards []model.InsightCard, maxMatches int) (string, error) {
	if maxMatches < 1 {
		maxMatches = DefaultMaxMatches
	}

	cardPayload := make([]promptCard, len(cards))
	for i, card := range cards {
		cardPayload[i] = promptCard{
			ID:                   card.ID,
			Title:                card.Title,
			VibePrompt:           card.VibePrompt,
			EvidenceKeysRequired: card.EvidenceKeysRequired,
			GoalTags:             card.GoalTags,
			Priority:             card.Priority,
		}
	}

	schema := map[string]any{
		"matches": []map[string]any{
			{
				"insight_id": "string",
				"message":    "string",
				"evidence":   map[string]string{"spend_context.path": "value_from_context"},
			},
		},
		"non_matches": []string{"string"},
	}

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to encode output schema: %w", err)
	}
	cardsJSON, err := json.Marshal(cardPayload)
	if err != nil {
		return "", fmt.Errorf("failed to encode cards: %w", err)
	}
	contextJSON, err := json.Marshal(sctx)
	if err != nil {
		return "", fmt.Errorf("failed to encode spend context: %w", err)
	}

	tone := sctx.Preferences.Tone
	if tone == "" {
		tone = "supportive"
	}

	var b strings.Builder
	b.WriteString("You are a financial insight selector.\n")
	fmt.Fprintf(&b, "Select at most %d insights.\n", maxMatches)
	b.WriteString("Only select cards when required evidence keys are present and directly grounded in SpendContext.\n")
	b.WriteString("Evidence keys in each match MUST be dot-paths that exist in SpendContext and values must come from context.\n")
	b.WriteString("If uncertain, list card IDs in non_matches.\n")
	fmt.Fprintf(&b, "Respect user tone in preferences.tone: %s.\n", tone)
	b.WriteString("No moralizing. Return JSON only.\n")
	fmt.Fprintf(&b, "Output schema: %s\n", schemaJSON)
	fmt.Fprintf(&b, "Insight cards: %s\n", cardsJSON)
	fmt.Fprintf(&b, "SpendContext: %s", contextJSON)
	return b.String(), nil
}
