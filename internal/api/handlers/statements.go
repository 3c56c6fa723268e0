package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/cardwise/internal/api/middleware"
	"github.com/dvloznov/cardwise/internal/jobs"
	store "github.com/dvloznov/cardwise/internal/store/bigquery"
)

// Uploader stores an uploaded statement PDF and returns its gs:// URI.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// StatementsHandler handles statement upload and listing.
type StatementsHandler struct {
	uploader  Uploader
	repo      store.Repository
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewStatementsHandler creates a statements handler.
func NewStatementsHandler(uploader Uploader, repo store.Repository, publisher jobs.Publisher, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		uploader:  uploader,
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// UploadStatement handles POST /api/statements/upload. The request body
// is the PDF itself; the filename comes from a query parameter. The
// upload is stored and a parsing job enqueued, so the response returns
// before the statement has been parsed.
func (h *StatementsHandler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "statement.pdf"
	}
	filename = filepath.Base(filename)

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	statementID := uuid.NewString()
	objectName := fmt.Sprintf("statements/%s/%s", time.Now().Format("2006/01/02"), statementID+"-"+filename)

	gcsURI, err := h.uploader.Upload(ctx, objectName, contentType, r.Body)
	if err != nil {
		h.log.Error().Err(err).Str("object_name", objectName).Msg("Failed to upload statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload statement")
		return
	}

	job := &jobs.ParseStatementJob{
		StatementID: statementID,
		GCSURI:      gcsURI,
	}
	if err := h.publisher.PublishParseStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Str("statement_id", statementID).Msg("Failed to enqueue parse job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parse job")
		return
	}

	h.log.Info().
		Str("statement_id", statementID).
		Str("job_id", job.JobID).
		Str("gcs_uri", gcsURI).
		Msg("Statement uploaded")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"statement_id": statementID,
		"job_id":       job.JobID,
		"gcs_uri":      gcsURI,
		"status":       string(job.Status),
	})
}

// ListStatements handles GET /api/statements
func (h *StatementsHandler) ListStatements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	statements, err := h.repo.ListStatements(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list statements")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list statements")
		return
	}

	if statements == nil {
		statements = []*store.StatementRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statements": statements,
		"count":      len(statements),
	})
}
