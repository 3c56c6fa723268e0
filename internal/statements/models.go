// Package statements turns uploaded credit-card statement PDFs into
// normalized billing summaries and transactions. Extraction is done by
// Gemini; everything the model returns is treated as untrusted and
// validated field by field before it reaches storage.
package statements

import (
	"time"
)

// Statement is one parsed credit-card statement.
type Statement struct {
	StatementID string

	StatementDate      time.Time // parsed from "statement_date" (YYYY-MM-DD)
	BillingPeriodStart time.Time
	BillingPeriodEnd   time.Time
	DueDate            time.Time

	TotalAmount float64 // statement balance
	MinimumDue  float64

	// Card metadata from the statement header. The card number is the
	// masked form printed on the statement, never a full PAN.
	CardNumber string
	CardType   string
	Bank       string

	Transactions []*Transaction
}

// Transaction is one line item on a statement.
type Transaction struct {
	Date        time.Time // parsed from "date" (YYYY-MM-DD)
	Description string
	Amount      float64
	Category    string
}
