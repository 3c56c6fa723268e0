package statements

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func rawStatement(t *testing.T, jsonStr string) map[string]interface{} {
	t.Helper()
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	return raw
}

const validStatementJSON = `{
	"statement_date": "2024-05-15",
	"billing_period_start": "2024-04-16",
	"billing_period_end": "2024-05-15",
	"due_date": "2024-06-05",
	"total_amount": 24350.75,
	"minimum_due": 1217.54,
	"card_number": "XXXX XXXX XXXX 4321",
	"card_type": "Visa",
	"bank": "HDFC Bank",
	"transactions": [
		{"date": "2024-04-18", "description": "AMAZON RETAIL IN", "amount": 2499.00, "category": "Shopping"},
		{"date": "2024-04-22", "description": "SWIGGY FOOD DELIVERY", "amount": 845.00, "category": "Food & Dining"},
		{"date": "2024-05-02", "description": "PAYMENT RECEIVED", "amount": -5000.00, "category": "Payment"}
	]
}`

func TestTransformStatement_Valid(t *testing.T) {
	stmt, err := transformStatement(rawStatement(t, validStatementJSON))
	if err != nil {
		t.Fatalf("transformStatement failed: %v", err)
	}

	wantDate := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	if !stmt.StatementDate.Equal(wantDate) {
		t.Errorf("StatementDate = %v, want %v", stmt.StatementDate, wantDate)
	}
	if stmt.TotalAmount != 24350.75 {
		t.Errorf("TotalAmount = %v, want 24350.75", stmt.TotalAmount)
	}
	if stmt.MinimumDue != 1217.54 {
		t.Errorf("MinimumDue = %v, want 1217.54", stmt.MinimumDue)
	}
	if stmt.CardNumber != "XXXX XXXX XXXX 4321" {
		t.Errorf("CardNumber = %q", stmt.CardNumber)
	}
	if stmt.Bank != "HDFC Bank" {
		t.Errorf("Bank = %q, want HDFC Bank", stmt.Bank)
	}
	if len(stmt.Transactions) != 3 {
		t.Fatalf("got %d transactions, want 3", len(stmt.Transactions))
	}
	if stmt.Transactions[2].Amount != -5000 {
		t.Errorf("payment amount = %v, want -5000", stmt.Transactions[2].Amount)
	}
}

func TestTransformStatement_OptionalHeaderFieldsNull(t *testing.T) {
	raw := rawStatement(t, `{
		"statement_date": "2024-05-15",
		"billing_period_start": null,
		"billing_period_end": null,
		"due_date": null,
		"total_amount": 100,
		"minimum_due": null,
		"card_number": null,
		"card_type": null,
		"bank": null,
		"transactions": []
	}`)

	stmt, err := transformStatement(raw)
	if err != nil {
		t.Fatalf("transformStatement failed: %v", err)
	}
	if !stmt.DueDate.IsZero() {
		t.Errorf("DueDate = %v, want zero", stmt.DueDate)
	}
	if stmt.CardType != "" || stmt.Bank != "" {
		t.Errorf("Expected empty optional strings, got %q / %q", stmt.CardType, stmt.Bank)
	}
}

func TestTransformStatement_Errors(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantSub string
	}{
		{
			name:    "missing statement_date",
			json:    `{"total_amount": 100, "transactions": []}`,
			wantSub: "statement_date",
		},
		{
			name:    "missing total_amount",
			json:    `{"statement_date": "2024-05-15", "transactions": []}`,
			wantSub: "total_amount",
		},
		{
			name:    "invalid date format",
			json:    `{"statement_date": "15/05/2024", "total_amount": 100, "transactions": []}`,
			wantSub: "statement_date",
		},
		{
			name:    "missing transactions",
			json:    `{"statement_date": "2024-05-15", "total_amount": 100}`,
			wantSub: "transactions",
		},
		{
			name:    "transactions wrong type",
			json:    `{"statement_date": "2024-05-15", "total_amount": 100, "transactions": {"oops": true}}`,
			wantSub: "transactions",
		},
		{
			name:    "transaction missing description",
			json:    `{"statement_date": "2024-05-15", "total_amount": 100, "transactions": [{"date": "2024-04-18", "amount": 10}]}`,
			wantSub: "description",
		},
		{
			name:    "transaction amount wrong type",
			json:    `{"statement_date": "2024-05-15", "total_amount": 100, "transactions": [{"date": "2024-04-18", "description": "x", "amount": "ten"}]}`,
			wantSub: "amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transformStatement(rawStatement(t, tt.json))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestTransformStatement_UncategorizedDefault(t *testing.T) {
	raw := rawStatement(t, `{
		"statement_date": "2024-05-15",
		"total_amount": 100,
		"transactions": [{"date": "2024-04-18", "description": "MYSTERY SPEND", "amount": 10}]
	}`)

	stmt, err := transformStatement(raw)
	if err != nil {
		t.Fatalf("transformStatement failed: %v", err)
	}
	if got := stmt.Transactions[0].Category; got != "Uncategorized" {
		t.Errorf("Category = %q, want Uncategorized", got)
	}
}
