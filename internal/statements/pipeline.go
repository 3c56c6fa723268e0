package statements

import (
	"context"
	"fmt"
	"time"

	bigquerylib "cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/cardwise/internal/gcs"
	"github.com/dvloznov/cardwise/internal/logger"
	store "github.com/dvloznov/cardwise/internal/store/bigquery"
	"github.com/google/uuid"
)

// Fetcher downloads an uploaded statement by its gs:// URI.
type Fetcher interface {
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// Pipeline processes one uploaded statement end to end: fetch the PDF,
// extract it with the model, validate the output, persist the result.
type Pipeline struct {
	fetcher   Fetcher
	extractor Extractor
	repo      store.Repository
}

// NewPipeline wires a pipeline from its dependencies.
func NewPipeline(fetcher Fetcher, extractor Extractor, repo store.Repository) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		repo:      repo,
	}
}

// Ingest parses the statement at gcsURI and stores it under
// statementID. A failed parse still leaves a FAILED statement row
// behind so the upload history shows the attempt.
func (p *Pipeline) Ingest(ctx context.Context, statementID, gcsURI string) error {
	log := logger.FromContext(ctx)

	pdfBytes, err := p.fetcher.Fetch(ctx, gcsURI)
	if err != nil {
		p.recordFailure(ctx, statementID, gcsURI)
		return fmt.Errorf("Ingest: fetching %s: %w", gcsURI, err)
	}

	rawOutput, err := p.extractor.ExtractStatement(ctx, pdfBytes)
	if err != nil {
		p.recordFailure(ctx, statementID, gcsURI)
		return fmt.Errorf("Ingest: extracting statement: %w", err)
	}

	stmt, err := transformStatement(rawOutput)
	if err != nil {
		p.recordFailure(ctx, statementID, gcsURI)
		return fmt.Errorf("Ingest: %w", err)
	}
	stmt.StatementID = statementID

	row := toStatementRow(stmt, gcsURI)
	row.ParsingStatus = store.StatusPending
	if err := p.repo.InsertStatement(ctx, row); err != nil {
		return fmt.Errorf("Ingest: inserting statement: %w", err)
	}

	if err := p.repo.InsertTransactions(ctx, toTransactionRows(stmt)); err != nil {
		if updErr := p.repo.UpdateStatementStatus(ctx, statementID, store.StatusFailed); updErr != nil {
			log.Error().Err(updErr).Str("statement_id", statementID).Msg("Failed to mark statement as failed")
		}
		return fmt.Errorf("Ingest: inserting transactions: %w", err)
	}

	if err := p.repo.UpdateStatementStatus(ctx, statementID, store.StatusParsed); err != nil {
		return fmt.Errorf("Ingest: marking statement parsed: %w", err)
	}

	log.Info().
		Str("statement_id", statementID).
		Int("transactions", len(stmt.Transactions)).
		Msg("Statement ingested")

	return nil
}

// recordFailure writes a minimal FAILED row for attempts that died
// before producing a statement. Best effort; the original error is
// what the caller reports.
func (p *Pipeline) recordFailure(ctx context.Context, statementID, gcsURI string) {
	log := logger.FromContext(ctx)

	row := &store.StatementRow{
		StatementID:      statementID,
		GCSURI:           gcsURI,
		OriginalFilename: gcs.FilenameFromURI(gcsURI),
		ParsingStatus:    store.StatusFailed,
	}
	if err := p.repo.InsertStatement(ctx, row); err != nil {
		log.Error().Err(err).Str("statement_id", statementID).Msg("Failed to record failed statement")
	}
}

func toStatementRow(stmt *Statement, gcsURI string) *store.StatementRow {
	return &store.StatementRow{
		StatementID:        stmt.StatementID,
		GCSURI:             gcsURI,
		OriginalFilename:   gcs.FilenameFromURI(gcsURI),
		StatementDate:      nullDate(stmt.StatementDate),
		BillingPeriodStart: nullDate(stmt.BillingPeriodStart),
		BillingPeriodEnd:   nullDate(stmt.BillingPeriodEnd),
		DueDate:            nullDate(stmt.DueDate),
		TotalAmount:        stmt.TotalAmount,
		MinimumDue:         stmt.MinimumDue,
		CardNumber:         stmt.CardNumber,
		CardType:           stmt.CardType,
		Bank:               stmt.Bank,
	}
}

func toTransactionRows(stmt *Statement) []*store.TransactionRow {
	rows := make([]*store.TransactionRow, 0, len(stmt.Transactions))
	for _, tx := range stmt.Transactions {
		rows = append(rows, &store.TransactionRow{
			TransactionID:   uuid.NewString(),
			StatementID:     stmt.StatementID,
			TransactionDate: civil.DateOf(tx.Date),
			Description:     tx.Description,
			Amount:          tx.Amount,
			Category:        tx.Category,
		})
	}
	return rows
}

func nullDate(t time.Time) bigquerylib.NullDate {
	if t.IsZero() {
		return bigquerylib.NullDate{}
	}
	return bigquerylib.NullDate{Date: civil.DateOf(t), Valid: true}
}
