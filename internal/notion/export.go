package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/cardwise/internal/logger"
	store "github.com/dvloznov/cardwise/internal/store/bigquery"
)

const pageSize = 100

// ExportTransactions mirrors the transactions in [start, end] into a
// Notion database. Pages whose transaction no longer exists are
// archived, missing transactions get new pages, existing ones are
// left alone. With dryRun set, changes are only logged.
func ExportTransactions(ctx context.Context, repo store.Repository, svc Service, databaseID string, start, end time.Time, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Time("start_date", start).
		Time("end_date", end).
		Bool("dry_run", dryRun).
		Msg("Starting transaction export to Notion")

	transactions, err := repo.QueryTransactionsByDateRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("ExportTransactions: querying transactions: %w", err)
	}

	validIDs := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		validIDs[tx.TransactionID] = true
	}

	pages, err := queryAllPages(ctx, svc, databaseID)
	if err != nil {
		return fmt.Errorf("ExportTransactions: %w", err)
	}

	log.Info().
		Int("transactions", len(transactions)).
		Int("notion_pages", len(pages)).
		Msg("Loaded current state")

	existingIDs := make(map[string]bool, len(pages))
	for _, page := range pages {
		if txID := extractTransactionID(page); txID != "" {
			existingIDs[txID] = true
		}
	}

	var archived int
	for _, page := range pages {
		txID := extractTransactionID(page)
		if txID != "" && validIDs[txID] {
			continue
		}

		if dryRun {
			log.Info().
				Str("transaction_id", txID).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would archive stale Notion page")
			archived++
			continue
		}

		if err := svc.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", txID).
				Str("page_id", string(page.ID)).
				Msg("Failed to archive stale Notion page")
			continue
		}
		archived++
	}

	var created, skipped int
	for _, tx := range transactions {
		if existingIDs[tx.TransactionID] {
			skipped++
			continue
		}

		if dryRun {
			log.Info().
				Str("transaction_id", tx.TransactionID).
				Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}

		page, err := svc.CreatePage(ctx, databaseID, transactionToProperties(tx))
		if err != nil {
			// One bad row should not abort the whole export.
			log.Warn().
				Err(err).
				Str("transaction_id", tx.TransactionID).
				Msg("Failed to create Notion page")
			continue
		}

		log.Debug().
			Str("transaction_id", tx.TransactionID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("created", created).
		Int("archived", archived).
		Int("skipped", skipped).
		Int("total", len(transactions)).
		Msg("Transaction export completed")

	return nil
}

// queryAllPages walks the database with cursor pagination.
func queryAllPages(ctx context.Context, svc Service, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: pageSize,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := svc.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllPages: %w", err)
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return all, nil
}
