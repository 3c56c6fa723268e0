// Package bigquery persists parsed statements and their transactions
// in BigQuery and answers the dashboard queries over them.
package bigquery

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// Statement parsing statuses.
const (
	StatusPending = "PENDING"
	StatusParsed  = "PARSED"
	StatusFailed  = "FAILED"
)

// StatementRow is one uploaded statement in the statements table.
type StatementRow struct {
	StatementID      string `bigquery:"statement_id"`
	GCSURI           string `bigquery:"gcs_uri"`
	OriginalFilename string `bigquery:"original_filename"`

	StatementDate      bigquery.NullDate `bigquery:"statement_date"`
	BillingPeriodStart bigquery.NullDate `bigquery:"billing_period_start"`
	BillingPeriodEnd   bigquery.NullDate `bigquery:"billing_period_end"`
	DueDate            bigquery.NullDate `bigquery:"due_date"`

	TotalAmount float64 `bigquery:"total_amount"`
	MinimumDue  float64 `bigquery:"minimum_due"`

	CardNumber string `bigquery:"card_number"` // masked, as printed
	CardType   string `bigquery:"card_type"`
	Bank       string `bigquery:"bank"`

	UploadTS      time.Time `bigquery:"upload_ts"`
	ParsingStatus string    `bigquery:"parsing_status"`
}

// TransactionRow is one statement line item in the transactions table.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"`
	StatementID   string `bigquery:"statement_id"`

	TransactionDate civil.Date `bigquery:"transaction_date"`
	Description     string     `bigquery:"description"`
	Amount          float64    `bigquery:"amount"` // positive = charge, negative = payment/refund
	Category        string     `bigquery:"category"`

	CreatedTS time.Time `bigquery:"created_ts"`
}

// MonthlySummary aggregates transactions for one calendar month.
type MonthlySummary struct {
	Month    string  `bigquery:"month" json:"month"` // "2024-05"
	Charges  float64 `bigquery:"charges" json:"charges"`
	Payments float64 `bigquery:"payments" json:"payments"`
	Net      float64 `bigquery:"net" json:"net"`
}

// Repository is the storage surface the handlers and the statements
// pipeline depend on. The BigQuery client implements it; tests use
// in-memory fakes.
type Repository interface {
	InsertStatement(ctx context.Context, row *StatementRow) error
	UpdateStatementStatus(ctx context.Context, statementID, status string) error
	ListStatements(ctx context.Context) ([]*StatementRow, error)

	InsertTransactions(ctx context.Context, rows []*TransactionRow) error
	QueryTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]*TransactionRow, error)
	MonthlySummaries(ctx context.Context, start, end time.Time) ([]*MonthlySummary, error)

	Close() error
}
