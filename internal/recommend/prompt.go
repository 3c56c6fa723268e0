package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dvloznov/cardwise/internal/catalog"
)

// buildPrompt formats the transaction and candidate cards into the
// instruction sent to the model. The model is asked for strict JSON;
// the advisor still runs the response through llmjson because models
// routinely ignore formatting instructions.
func buildPrompt(tx Transaction, cards []catalog.Card) string {
	var b strings.Builder

	b.WriteString("You are a credit card rewards expert. Based on the following transaction and available credit cards,\n")
	b.WriteString("recommend the best card to use for maximum rewards.\n\n")

	b.WriteString("Transaction details:\n")
	fmt.Fprintf(&b, "- Amount: %.2f\n", tx.Amount)
	fmt.Fprintf(&b, "- Platform: %s\n", tx.Platform)
	fmt.Fprintf(&b, "- Category: %s\n\n", tx.Category)

	b.WriteString("Available credit cards:\n")
	for _, card := range cards {
		fmt.Fprintf(&b, "- ID: %s\n", card.ID)
		fmt.Fprintf(&b, "  Name: %s (%s)\n", card.Name, card.Bank)
		fmt.Fprintf(&b, "  Type: %s\n", card.Type)
		fmt.Fprintf(&b, "  Annual Fee: %.0f\n", card.AnnualFee)
		fmt.Fprintf(&b, "  Rewards: %s\n", formatRewards(card))
		fmt.Fprintf(&b, "  Benefits: %s\n", formatBenefits(card))
	}

	b.WriteString("\nAnalyze which card gives the maximum rewards for this transaction, considering the platform,\n")
	b.WriteString("category, and amount. Return your recommendation as a JSON object with this exact shape:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"bestCardId\": \"card-id-here\",\n")
	b.WriteString("  \"savingsAmount\": 123.45,\n")
	b.WriteString("  \"savingsPercentage\": 5.0,\n")
	b.WriteString("  \"explanation\": \"Brief explanation of why this card is best\",\n")
	b.WriteString("  \"comparisonResults\": [\n")
	b.WriteString("    {\"cardId\": \"other-card-id\", \"savingsAmount\": 100.00, \"savingsPercentage\": 4.0}\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n\n")
	b.WriteString("Return ONLY the JSON object, no other text.\n")

	return b.String()
}

// formatRewards renders the reward table as "key: 5.0%" pairs sorted
// for a stable prompt.
func formatRewards(card catalog.Card) string {
	keys := make([]string, 0, len(card.Rewards))
	for k := range card.Rewards {
		keys = append(keys, k)
	}
	// Maps iterate in random order; sort so identical inputs produce
	// identical prompts (and identical cache keys upstream).
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %.1f%%", k, card.Rewards[k]*100))
	}
	return strings.Join(parts, ", ")
}

func formatBenefits(card catalog.Card) string {
	if len(card.Benefits) == 0 {
		return "None"
	}
	return strings.Join(card.Benefits, ", ")
}
