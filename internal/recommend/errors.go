package recommend

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or invalid field on the inbound
// transaction. It surfaces to callers as a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NoEligibleCardsError reports that filtering the catalog by the
// user's card selection produced an empty set.
type NoEligibleCardsError struct {
	Requested []string
}

func (e *NoEligibleCardsError) Error() string {
	return fmt.Sprintf("none of the selected cards %v exist in the catalog", e.Requested)
}

// ErrUnusableResponse signals that the model replied but its output
// could not be turned into a recommendation. It is a soft failure: the
// orchestrator swallows it and falls back to the rule-based scorer.
var ErrUnusableResponse = errors.New("unusable model response")
