package recommend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dvloznov/cardwise/internal/catalog"
	"github.com/dvloznov/cardwise/internal/llmjson"
)

// Advise asks the model to pick the best card and maps its answer back
// onto the catalog. It calls the generator exactly once.
//
// Hard failures (the generator itself erroring) come back wrapped as-is.
// Everything about the response body is treated as untrusted: a reply
// that cannot be parsed, lacks bestCardId, or names a card that is not
// in the candidate set yields ErrUnusableResponse so the caller can
// fall back to the rule-based scorer. Numeric fields are passed through
// without being re-derived; the model is asked to compute savings
// itself and its arithmetic is not second-guessed here.
func Advise(ctx context.Context, tx Transaction, cards []catalog.Card, gen Generator) (*Result, error) {
	if len(cards) == 0 {
		return nil, &NoEligibleCardsError{Requested: tx.UserCards}
	}

	raw, err := gen(ctx, buildPrompt(tx, cards))
	if err != nil {
		return nil, fmt.Errorf("Advise: generate: %w", err)
	}

	payload, ok := llmjson.ExtractObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrUnusableResponse)
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusableResponse, err)
	}

	return mapResponse(obj, cards)
}

// mapResponse validates the untrusted model payload field by field and
// resolves card ids against the candidate set.
func mapResponse(obj map[string]interface{}, cards []catalog.Card) (*Result, error) {
	byID := make(map[string]catalog.Card, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}

	bestID, err := getStringField(obj, "bestCardId")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusableResponse, err)
	}

	best, ok := byID[bestID]
	if !ok {
		return nil, fmt.Errorf("%w: bestCardId %q is not an eligible card", ErrUnusableResponse, bestID)
	}

	result := &Result{
		BestCard:          best,
		SavingsAmount:     getNumberField(obj, "savingsAmount"),
		SavingsPercentage: getNumberField(obj, "savingsPercentage"),
	}
	if expl, err := getStringField(obj, "explanation"); err == nil {
		result.Explanation = expl
	} else {
		result.Explanation = fmt.Sprintf("%s is the recommended card for this transaction.", best.Name)
	}

	// Comparison entries referencing unknown cards are dropped, and the
	// winner never appears in its own comparison list.
	if rawList, ok := obj["comparisonResults"].([]interface{}); ok {
		for _, item := range rawList {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			cardID, err := getStringField(entry, "cardId")
			if err != nil || cardID == bestID {
				continue
			}
			card, ok := byID[cardID]
			if !ok {
				continue
			}
			result.ComparisonResults = append(result.ComparisonResults, Entry{
				Card:              card,
				SavingsAmount:     getNumberField(entry, "savingsAmount"),
				SavingsPercentage: getNumberField(entry, "savingsPercentage"),
			})
		}
	}

	return result, nil
}

func getStringField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if s == "" {
		return "", fmt.Errorf("field %q is empty", key)
	}
	return s, nil
}

// getNumberField reads a numeric field, tolerating absence and wrong
// types by returning zero: the advisor's numbers are advisory only.
func getNumberField(m map[string]interface{}, key string) float64 {
	if f, ok := m[key].(float64); ok {
		return f
	}
	return 0
}
