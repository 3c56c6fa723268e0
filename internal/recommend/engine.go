package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/cardwise/internal/cache"
	"github.com/dvloznov/cardwise/internal/catalog"
	"github.com/rs/zerolog"
)

const cacheTTL = 24 * time.Hour

// Engine orchestrates the two recommendation strategies. When a
// generator is configured the AI-assisted advisor runs first under a
// bounded timeout; any failure there is swallowed and the rule-based
// scorer answers instead, so a valid request with at least one eligible
// card always gets a recommendation.
type Engine struct {
	catalog *catalog.Catalog
	gen     Generator // nil disables the AI path
	cache   cache.Cache
	timeout time.Duration
	log     zerolog.Logger
}

// NewEngine creates a recommendation engine. gen and c may be nil.
func NewEngine(cat *catalog.Catalog, gen Generator, c cache.Cache, timeout time.Duration, log zerolog.Logger) *Engine {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Engine{
		catalog: cat,
		gen:     gen,
		cache:   c,
		timeout: timeout,
		log:     log,
	}
}

// Recommend validates the transaction and returns the best card for
// it. The only error types it returns are *ValidationError and
// *NoEligibleCardsError; advisor failures never escape.
func (e *Engine) Recommend(ctx context.Context, tx Transaction) (*Result, error) {
	if err := validate(tx); err != nil {
		return nil, err
	}

	cards := e.catalog.Filter(tx.UserCards)
	if len(cards) == 0 {
		return nil, &NoEligibleCardsError{Requested: tx.UserCards}
	}

	if e.gen != nil {
		if result := e.advise(ctx, tx, cards); result != nil {
			return result, nil
		}
	}

	// The deterministic path cannot fail once the eligible set is
	// known to be non-empty.
	return Score(tx, cards)
}

// advise runs the AI path with the cache and timeout around it. A nil
// return means "fall back"; the reason has already been logged.
func (e *Engine) advise(ctx context.Context, tx Transaction, cards []catalog.Card) *Result {
	key := cacheKey(tx)

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, key); ok {
			var result Result
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				e.log.Debug().Str("cache_key", key).Msg("Recommendation served from cache")
				return &result
			}
			e.log.Warn().Str("cache_key", key).Msg("Dropping malformed cache entry")
		}
	}

	adviseCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := Advise(adviseCtx, tx, cards, e.gen)
	if err != nil {
		e.log.Warn().
			Err(err).
			Str("platform", tx.Platform).
			Str("category", tx.Category).
			Msg("Advisor failed, falling back to rule-based scorer")
		return nil
	}

	if e.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := e.cache.Set(ctx, key, string(data), cacheTTL); err != nil {
				e.log.Warn().Err(err).Msg("Failed to cache recommendation")
			}
		}
	}

	return result
}

func validate(tx Transaction) error {
	if tx.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if strings.TrimSpace(tx.Platform) == "" {
		return &ValidationError{Field: "platform", Reason: "is required"}
	}
	if strings.TrimSpace(tx.Category) == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	return nil
}

// cacheKey builds a canonical key for a transaction; the card list is
// sorted so selection order doesn't fragment the cache.
func cacheKey(tx Transaction) string {
	cards := make([]string, len(tx.UserCards))
	copy(cards, tx.UserCards)
	sort.Strings(cards)

	return fmt.Sprintf("recommend:%s|%s|%.2f|%s",
		tx.Platform, tx.Category, tx.Amount, strings.Join(cards, ","))
}
