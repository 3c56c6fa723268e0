package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/cardwise/internal/api/middleware"
	"github.com/dvloznov/cardwise/internal/catalog"
)

// CardsHandler serves the card catalog.
type CardsHandler struct {
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// NewCardsHandler creates a cards handler.
func NewCardsHandler(cat *catalog.Catalog, log zerolog.Logger) *CardsHandler {
	return &CardsHandler{
		catalog: cat,
		log:     log,
	}
}

// ListCards handles GET /api/cards
func (h *CardsHandler) ListCards(w http.ResponseWriter, _ *http.Request) {
	cards := h.catalog.Cards()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cards": cards,
		"count": len(cards),
	})
}

// GetCard handles GET /api/cards/{id}
func (h *CardsHandler) GetCard(w http.ResponseWriter, _ *http.Request, cardID string) {
	card, ok := h.catalog.ByID(cardID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Card not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, card)
}
