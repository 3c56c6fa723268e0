// Package recommend implements the credit-card reward recommendation
// engine: a deterministic rule-based scorer, an optional AI-assisted
// advisor, and the orchestration that falls back from one to the other.
package recommend

import (
	"context"

	"github.com/dvloznov/cardwise/internal/catalog"
)

// Transaction describes a single planned spend the user wants a card
// recommendation for.
type Transaction struct {
	// Amount is the transaction value; must be positive.
	Amount float64 `json:"amount"`
	// Platform is the merchant or channel label, e.g. "Amazon".
	Platform string `json:"platform"`
	// Category is the spend category label, e.g. "Shopping".
	Category string `json:"category"`
	// UserCards restricts the catalog to cards the user holds.
	// Empty means the whole catalog is considered.
	UserCards []string `json:"userCards"`
}

// Entry is one non-winning candidate in the comparison list.
type Entry struct {
	Card              catalog.Card `json:"card"`
	SavingsAmount     float64      `json:"savingsAmount"`
	SavingsPercentage float64      `json:"savingsPercentage"`
}

// Result is the uniform recommendation shape produced by both the
// rule-based and the AI-assisted paths.
type Result struct {
	BestCard          catalog.Card `json:"bestCard"`
	SavingsAmount     float64      `json:"savingsAmount"`
	SavingsPercentage float64      `json:"savingsPercentage"`
	Explanation       string       `json:"explanation"`
	// ComparisonResults holds every non-winning candidate, sorted by
	// descending savings amount.
	ComparisonResults []Entry `json:"comparisonResults"`
}

// Generator is the single outbound I/O boundary of this package: it
// takes a prompt and returns the raw model response. Implementations
// live elsewhere (see internal/ai); tests supply fakes.
type Generator func(ctx context.Context, prompt string) (string, error)
