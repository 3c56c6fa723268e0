package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/cardwise/internal/api/middleware"
	store "github.com/dvloznov/cardwise/internal/store/bigquery"
)

// TransactionsHandler serves parsed statement transactions.
type TransactionsHandler struct {
	repo store.Repository
	log  zerolog.Logger
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(repo store.Repository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		repo: repo,
		log:  log,
	}
}

// parseDateRange reads start_date/end_date query parameters, defaulting
// to the last year.
func parseDateRange(r *http.Request) (start, end time.Time, err error) {
	query := r.URL.Query()

	start = time.Now().AddDate(-1, 0, 0)
	end = time.Now()

	if s := query.Get("start_date"); s != "" {
		start, err = time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if s := query.Get("end_date"); s != "" {
		end, err = time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	start, end, err := parseDateRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date format, want YYYY-MM-DD")
		return
	}

	transactions, err := h.repo.QueryTransactionsByDateRange(ctx, start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	if transactions == nil {
		transactions = []*store.TransactionRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// MonthlySummary handles GET /api/transactions/summary
func (h *TransactionsHandler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	start, end, err := parseDateRange(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date format, want YYYY-MM-DD")
		return
	}

	summaries, err := h.repo.MonthlySummaries(ctx, start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute monthly summaries")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute monthly summaries")
		return
	}

	if summaries == nil {
		summaries = []*store.MonthlySummary{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": summaries,
		"count":     len(summaries),
	})
}
