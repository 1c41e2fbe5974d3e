package insights

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/sammoorhouse/mentos/internal/model"
)

// DefaultMaxMatches caps how many insights one reasoner response may select.
const DefaultMaxMatches = 3

// ValidationResult reports whether a reasoner response is grounded in the
// spend context. Matches holds the decoded selections when Valid is true.
type ValidationResult struct {
	Errors  []string
	Matches []model.Match
	Valid   bool
}

// ValidateLLMResponse checks a raw reasoner response against the card
// catalog and the spend context it was shown. Every evidence entry must be
// a dot-path that resolves inside the context and carry exactly the value
// found there. Unverifiable output is rejected wholesale.
func ValidateLLMResponse(raw []byte, sctx *model.SpendContext, cards []model.InsightCard, maxMatches int) (*ValidationResult, error) {
	if maxMatches < 1 {
		maxMatches = DefaultMaxMatches
	}

	var response map[string]any
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	contextPayload, err := contextAsMap(sctx)
	if err != nil {
		return nil, err
	}

	byID := CardsByID(cards)
	var errs []string

	matches, ok := response["matches"].([]any)
	if !ok {
		errs = append(errs, "matches must be a list")
		return &ValidationResult{Valid: false, Errors: errs}, nil
	}
	if nonMatches, present := response["non_matches"]; present && nonMatches != nil {
		if _, ok := nonMatches.([]any); !ok {
			errs = append(errs, "non_matches must be a list")
		}
	}

	if len(matches) > maxMatches {
		errs = append(errs, fmt.Sprintf("too many matches: %d > %d", len(matches), maxMatches))
	}

	decoded := make([]model.Match, 0, len(matches))
	for idx, entry := range matches {
		match, _ := entry.(map[string]any)
		insightID, _ := match["insight_id"].(string)
		card, known := byID[insightID]
		if !known {
			errs = append(errs, fmt.Sprintf("match[%d] unknown insight_id: %v", idx, match["insight_id"]))
			continue
		}

		evidence, evidenceOK := evidenceObject(match["evidence"])
		if !evidenceOK {
			errs = append(errs, fmt.Sprintf("match[%d] evidence must be object", idx))
			continue
		}

		if missingRequiredKeys(card.EvidenceKeysRequired, evidence) {
			errs = append(errs, fmt.Sprintf("match[%d] missing required evidence keys", idx))
		}
		for _, path := range sortedKeys(evidence) {
			contextValue, found := resolvePath(contextPayload, path)
			if !found {
				errs = append(errs, fmt.Sprintf("match[%d] invalid evidence path: %s", idx, path))
				continue
			}
			if !reflect.DeepEqual(contextValue, evidence[path]) {
				errs = append(errs, fmt.Sprintf("match[%d] evidence mismatch for path: %s", idx, path))
			}
		}

		message, _ := match["message"].(string)
		decoded = append(decoded, model.Match{
			InsightID: insightID,
			Message:   message,
			Evidence:  evidence,
		})
	}

	result := &ValidationResult{Valid: len(errs) == 0, Errors: errs}
	if result.Valid {
		result.Matches = decoded
	}
	return result, nil
}

// contextAsMap round-trips the typed context through JSON so evidence
// comparison happens on the same representation the reasoner was shown.
func contextAsMap(sctx *model.SpendContext) (map[string]any, error) {
	data, err := json.Marshal(sctx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode spend context: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode spend context: %w", err)
	}
	return payload, nil
}

func evidenceObject(value any) (map[string]any, bool) {
	if value == nil {
		return map[string]any{}, true
	}
	evidence, ok := value.(map[string]any)
	return evidence, ok
}

func missingRequiredKeys(required []string, evidence map[string]any) bool {
	for _, key := range required {
		if _, present := evidence[key]; !present {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// resolvePath walks a dot-path through nested JSON objects.
func resolvePath(payload map[string]any, path string) (any, bool) {
	var current any = payload
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
