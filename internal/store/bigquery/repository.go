package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	statementsTable   = "statements"
	transactionsTable = "transactions"
)

// Client is the concrete Repository backed by BigQuery. It holds a
// shared client so operations don't open a new connection each time.
type Client struct {
	client  *bigquery.Client
	dataset string
}

// NewClient creates a repository for the given project and dataset.
func NewClient(ctx context.Context, projectID, dataset string) (*Client, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewClient: bigquery client: %w", err)
	}
	return &Client{client: client, dataset: dataset}, nil
}

// Close closes the underlying BigQuery client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// InsertStatement inserts a statement row via the streaming inserter.
func (c *Client) InsertStatement(ctx context.Context, row *StatementRow) error {
	if row.StatementID == "" {
		return fmt.Errorf("InsertStatement: statement ID is required")
	}
	if row.UploadTS.IsZero() {
		row.UploadTS = time.Now()
	}

	inserter := c.client.Dataset(c.dataset).Table(statementsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertStatement: inserting row: %w", err)
	}
	return nil
}

// UpdateStatementStatus moves a statement between parsing states.
func (c *Client) UpdateStatementStatus(ctx context.Context, statementID, status string) error {
	q := c.client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET parsing_status = @status
		WHERE statement_id = @statement_id
	`, c.dataset, statementsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: status},
		{Name: "statement_id", Value: statementID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("UpdateStatementStatus: running update: %w", err)
	}
	jobStatus, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("UpdateStatementStatus: waiting for job: %w", err)
	}
	if err := jobStatus.Err(); err != nil {
		return fmt.Errorf("UpdateStatementStatus: job error: %w", err)
	}
	return nil
}

// ListStatements returns all statements, newest upload first.
func (c *Client) ListStatements(ctx context.Context) ([]*StatementRow, error) {
	q := c.client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s.%s
		ORDER BY upload_ts DESC
	`, c.dataset, statementsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListStatements: running query: %w", err)
	}

	var rows []*StatementRow
	for {
		var row StatementRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListStatements: reading row: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// InsertTransactions inserts statement line items in one batch.
func (c *Client) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}
	for i, row := range rows {
		if row.TransactionID == "" {
			return fmt.Errorf("InsertTransactions: row %d has empty transaction ID", i)
		}
		if row.CreatedTS.IsZero() {
			row.CreatedTS = time.Now()
		}
	}

	inserter := c.client.Dataset(c.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting %d rows: %w", len(rows), err)
	}
	return nil
}

// QueryTransactionsByDateRange returns transactions with dates in
// [start, end], newest first.
func (c *Client) QueryTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]*TransactionRow, error) {
	q := c.client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s.%s
		WHERE transaction_date BETWEEN @start_date AND @end_date
		ORDER BY transaction_date DESC
	`, c.dataset, transactionsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start.Format("2006-01-02")},
		{Name: "end_date", Value: end.Format("2006-01-02")},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: running query: %w", err)
	}

	var rows []*TransactionRow
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: reading row: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// MonthlySummaries aggregates charges and payments per calendar month
// for the dashboard. Charges are positive amounts, payments negative.
func (c *Client) MonthlySummaries(ctx context.Context, start, end time.Time) ([]*MonthlySummary, error) {
	q := c.client.Query(fmt.Sprintf(`
		SELECT
			FORMAT_DATE('%%Y-%%m', transaction_date) AS month,
			SUM(IF(amount > 0, amount, 0)) AS charges,
			SUM(IF(amount < 0, -amount, 0)) AS payments,
			SUM(-amount) AS net
		FROM %s.%s
		WHERE transaction_date BETWEEN @start_date AND @end_date
		GROUP BY month
		ORDER BY month
	`, c.dataset, transactionsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start.Format("2006-01-02")},
		{Name: "end_date", Value: end.Format("2006-01-02")},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("MonthlySummaries: running query: %w", err)
	}

	var rows []*MonthlySummary
	for {
		var row MonthlySummary
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("MonthlySummaries: reading row: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// Ensure Client implements the Repository interface.
var _ Repository = (*Client)(nil)
