// Package handlers implements the HTTP endpoints of the API server.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/cardwise/internal/api/middleware"
	"github.com/dvloznov/cardwise/internal/recommend"
)

// RecommendHandler serves card recommendations.
type RecommendHandler struct {
	engine *recommend.Engine
	log    zerolog.Logger
}

// NewRecommendHandler creates a recommend handler.
func NewRecommendHandler(engine *recommend.Engine, log zerolog.Logger) *RecommendHandler {
	return &RecommendHandler{
		engine: engine,
		log:    log,
	}
}

// Recommend handles POST /api/recommend
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var tx recommend.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.engine.Recommend(ctx, tx)
	if err != nil {
		var validationErr *recommend.ValidationError
		var noCardsErr *recommend.NoEligibleCardsError

		switch {
		case errors.As(err, &validationErr):
			middleware.WriteError(w, http.StatusBadRequest, validationErr.Error())
		case errors.As(err, &noCardsErr):
			middleware.WriteError(w, http.StatusBadRequest, noCardsErr.Error())
		default:
			h.log.Error().Err(err).Msg("Recommendation failed")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute recommendation")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}
