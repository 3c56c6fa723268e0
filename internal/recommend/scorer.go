package recommend

import (
	"fmt"
	"sort"

	"github.com/dvloznov/cardwise/internal/catalog"
)

// Score ranks the candidate cards for a transaction using the static
// reward tables alone. It performs no I/O, so given the same inputs it
// always produces the same output.
//
// The rate for each card resolves as platform match, then category
// match, then the card's default rate, then zero. Candidates are sorted
// by descending savings; the sort is stable so catalog order breaks
// ties. The head becomes the winner, the tail the comparison list.
func Score(tx Transaction, cards []catalog.Card) (*Result, error) {
	if len(cards) == 0 {
		return nil, &NoEligibleCardsError{Requested: tx.UserCards}
	}

	scored := make([]Entry, 0, len(cards))
	for _, card := range cards {
		rate := card.Rate(tx.Platform, tx.Category)
		scored = append(scored, Entry{
			Card:              card,
			SavingsAmount:     tx.Amount * rate,
			SavingsPercentage: rate * 100,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SavingsAmount > scored[j].SavingsAmount
	})

	best := scored[0]
	return &Result{
		BestCard:          best.Card,
		SavingsAmount:     best.SavingsAmount,
		SavingsPercentage: best.SavingsPercentage,
		Explanation:       fmt.Sprintf("%s offers the highest rewards for this transaction.", best.Card.Name),
		ComparisonResults: scored[1:],
	}, nil
}
