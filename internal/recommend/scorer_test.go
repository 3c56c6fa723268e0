package recommend

import (
	"errors"
	"testing"

	"github.com/dvloznov/cardwise/internal/catalog"
)

func testCards() []catalog.Card {
	return []catalog.Card{
		{
			ID:   "card-a",
			Name: "Card A",
			Rewards: map[string]float64{
				"Amazon":  0.05,
				"default": 0.01,
			},
		},
		{
			ID:   "card-b",
			Name: "Card B",
			Rewards: map[string]float64{
				"Shopping": 0.02,
			},
		},
		{
			ID:   "card-c",
			Name: "Card C",
			Rewards: map[string]float64{
				"Amazon":   0.03,
				"Shopping": 0.04,
				"default":  0.005,
			},
		},
	}
}

func TestScore_WinnerHasMaxSavings(t *testing.T) {
	tx := Transaction{Amount: 1000, Platform: "Amazon", Category: "Shopping"}

	result, err := Score(tx, testCards())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if result.BestCard.ID != "card-a" {
		t.Errorf("BestCard = %s, want card-a", result.BestCard.ID)
	}
	if result.SavingsAmount != 50 {
		t.Errorf("SavingsAmount = %v, want 50", result.SavingsAmount)
	}
	if result.SavingsPercentage != 5 {
		t.Errorf("SavingsPercentage = %v, want 5", result.SavingsPercentage)
	}
	if result.Explanation == "" {
		t.Error("Expected a non-empty explanation")
	}
}

func TestScore_PlatformBeatsCategory(t *testing.T) {
	// card-c has both an Amazon (3%) and a Shopping (4%) rate; the
	// platform rate must win even though the category rate is higher.
	tx := Transaction{Amount: 100, Platform: "Amazon", Category: "Shopping"}

	result, err := Score(tx, testCards()[2:])
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if result.SavingsAmount != 3 {
		t.Errorf("SavingsAmount = %v, want 3 (platform rate)", result.SavingsAmount)
	}
}

func TestScore_ComparisonListSortedAndExcludesWinner(t *testing.T) {
	tx := Transaction{Amount: 1000, Platform: "Amazon", Category: "Shopping"}

	result, err := Score(tx, testCards())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if len(result.ComparisonResults) != 2 {
		t.Fatalf("ComparisonResults has %d entries, want 2", len(result.ComparisonResults))
	}
	for i, entry := range result.ComparisonResults {
		if entry.Card.ID == result.BestCard.ID {
			t.Error("Comparison list must not include the winner")
		}
		if i > 0 && entry.SavingsAmount > result.ComparisonResults[i-1].SavingsAmount {
			t.Error("Comparison list is not sorted by descending savings")
		}
	}

	// card-c: Amazon 3% = 30, card-b: Shopping 2% = 20.
	if result.ComparisonResults[0].Card.ID != "card-c" {
		t.Errorf("ComparisonResults[0] = %s, want card-c", result.ComparisonResults[0].Card.ID)
	}
	if result.ComparisonResults[1].Card.ID != "card-b" {
		t.Errorf("ComparisonResults[1] = %s, want card-b", result.ComparisonResults[1].Card.ID)
	}
}

func TestScore_TieBrokenByCatalogOrder(t *testing.T) {
	cards := []catalog.Card{
		{ID: "first", Name: "First", Rewards: map[string]float64{"default": 0.02}},
		{ID: "second", Name: "Second", Rewards: map[string]float64{"default": 0.02}},
	}
	tx := Transaction{Amount: 500, Platform: "Anything", Category: "Other"}

	result, err := Score(tx, cards)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if result.BestCard.ID != "first" {
		t.Errorf("BestCard = %s, want first (catalog order breaks ties)", result.BestCard.ID)
	}
}

func TestScore_NoRateMatchesYieldsZeroSavings(t *testing.T) {
	cards := []catalog.Card{
		{ID: "bare", Name: "Bare", Rewards: map[string]float64{"Travel": 0.05}},
	}
	tx := Transaction{Amount: 500, Platform: "Amazon", Category: "Shopping"}

	result, err := Score(tx, cards)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if result.SavingsAmount != 0 || result.SavingsPercentage != 0 {
		t.Errorf("Expected zero savings, got %v / %v%%", result.SavingsAmount, result.SavingsPercentage)
	}
}

func TestScore_EmptyCandidates(t *testing.T) {
	tx := Transaction{Amount: 100, Platform: "Amazon", Category: "Shopping", UserCards: []string{"ghost"}}

	_, err := Score(tx, nil)
	var noCards *NoEligibleCardsError
	if !errors.As(err, &noCards) {
		t.Fatalf("Expected NoEligibleCardsError, got %v", err)
	}
}
