package statements

import (
	"fmt"
	"strings"
	"time"
)

// transformStatement converts raw model output into a validated
// Statement. Required fields that are missing or mistyped fail the
// whole statement; optional header fields degrade to empty values.
func transformStatement(raw map[string]interface{}) (*Statement, error) {
	stmtDate, err := getDateField(raw, "statement_date", true)
	if err != nil {
		return nil, fmt.Errorf("transformStatement: %w", err)
	}
	periodStart, err := getDateField(raw, "billing_period_start", false)
	if err != nil {
		return nil, fmt.Errorf("transformStatement: %w", err)
	}
	periodEnd, err := getDateField(raw, "billing_period_end", false)
	if err != nil {
		return nil, fmt.Errorf("transformStatement: %w", err)
	}
	dueDate, err := getDateField(raw, "due_date", false)
	if err != nil {
		return nil, fmt.Errorf("transformStatement: %w", err)
	}

	totalAmount, err := getFloat64Field(raw, "total_amount", true)
	if err != nil {
		return nil, fmt.Errorf("transformStatement: %w", err)
	}
	minimumDue, err := getFloat64Field(raw, "minimum_due", false)
	if err != nil {
		return nil, fmt.Errorf("transformStatement: %w", err)
	}

	stmt := &Statement{
		StatementDate:      stmtDate,
		BillingPeriodStart: periodStart,
		BillingPeriodEnd:   periodEnd,
		DueDate:            dueDate,
		TotalAmount:        totalAmount,
		MinimumDue:         minimumDue,
		CardNumber:         optionalString(raw, "card_number"),
		CardType:           optionalString(raw, "card_type"),
		Bank:               optionalString(raw, "bank"),
	}

	txs, err := transformTransactions(raw)
	if err != nil {
		return nil, err
	}
	stmt.Transactions = txs

	return stmt, nil
}

func transformTransactions(raw map[string]interface{}) ([]*Transaction, error) {
	txAny, ok := raw["transactions"]
	if !ok || txAny == nil {
		return nil, fmt.Errorf("transformTransactions: missing 'transactions' in model output")
	}

	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("transformTransactions: 'transactions' is %T, want []interface{}", txAny)
	}

	result := make([]*Transaction, 0, len(txSlice))

	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transformTransactions: element %d is %T, want map[string]interface{}", i, item)
		}

		date, err := getDateField(obj, "date", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		desc, err := getStringField(obj, "description", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		amount, err := getFloat64Field(obj, "amount", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		category := optionalString(obj, "category")
		if category == "" {
			category = "Uncategorized"
		}

		result = append(result, &Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Category:    category,
		})
	}

	return result, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if required && strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return s, nil
}

func optionalString(m map[string]interface{}, key string) string {
	s, err := getStringField(m, key, false)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func getFloat64Field(m map[string]interface{}, key string, required bool) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	return f, nil
}

// getDateField parses a YYYY-MM-DD string field. A missing optional
// date yields the zero time.
func getDateField(m map[string]interface{}, key string, required bool) (time.Time, error) {
	s, err := getStringField(m, key, required)
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return date, nil
}
