// Package catalog holds the static set of known credit cards and their
// reward rules. The catalog is reference data: it is loaded once at
// startup and never mutated afterwards, so it is safe to share across
// concurrent requests.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed cards.json
var defaultCards []byte

// Card describes a single credit card offer.
type Card struct {
	ID        string `json:"id"`
	Bank      string `json:"bank"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	AnnualFee float64 `json:"annualFee"`

	// Rewards maps a platform or spend-category label to a reward rate
	// expressed as a fraction (0.05 = 5%). The "default" key, when
	// present, applies when no specific label matches.
	Rewards map[string]float64 `json:"rewards"`

	Benefits []string `json:"benefits"`
}

// DefaultRewardKey is the Rewards key consulted when neither the
// platform nor the category of a transaction matches.
const DefaultRewardKey = "default"

// Rate resolves the effective reward rate for a platform/category pair.
// Precedence: exact platform match, then exact category match, then the
// card's default rate, then zero. Platform wins over category because
// merchant-specific deals are more precise than category-level ones.
func (c Card) Rate(platform, category string) float64 {
	if rate, ok := c.Rewards[platform]; ok {
		return rate
	}
	if rate, ok := c.Rewards[category]; ok {
		return rate
	}
	return c.Rewards[DefaultRewardKey]
}

// Catalog is an ordered, read-only collection of cards. Order matters:
// when two cards yield identical savings the first-listed card wins.
type Catalog struct {
	cards []Card
	byID  map[string]int
}

// New builds a catalog from the given cards.
func New(cards []Card) (*Catalog, error) {
	byID := make(map[string]int, len(cards))
	for i, card := range cards {
		if card.ID == "" {
			return nil, fmt.Errorf("catalog.New: card %d has empty id", i)
		}
		if _, dup := byID[card.ID]; dup {
			return nil, fmt.Errorf("catalog.New: duplicate card id %q", card.ID)
		}
		byID[card.ID] = i
	}
	return &Catalog{cards: cards, byID: byID}, nil
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return parse(defaultCards)
}

// Load reads a catalog from a JSON file. An empty path falls back to
// the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: reading %s: %w", path, err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("catalog: parsing cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("catalog: no cards defined")
	}
	return New(cards)
}

// Cards returns all cards in catalog order.
func (c *Catalog) Cards() []Card {
	return c.cards
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// ByID returns the card with the given id.
func (c *Catalog) ByID(id string) (Card, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// Filter returns the cards matching the given ids, preserving catalog
// order. Unknown ids are silently dropped. An empty id list means the
// caller holds no specific cards, so the full catalog is returned.
func (c *Catalog) Filter(ids []string) []Card {
	if len(ids) == 0 {
		return c.cards
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var result []Card
	for _, card := range c.cards {
		if wanted[card.ID] {
			result = append(result, card)
		}
	}
	return result
}
