package statements

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/cardwise/internal/ai"
	"github.com/dvloznov/cardwise/internal/llmjson"
)

// Extractor produces the raw model output for a statement PDF. The
// interface exists so the pipeline can be tested without a model call.
type Extractor interface {
	ExtractStatement(ctx context.Context, pdfBytes []byte) (map[string]interface{}, error)
}

// GeminiExtractor is the Extractor backed by Gemini.
type GeminiExtractor struct {
	gen *ai.Gemini
}

// NewGeminiExtractor creates an extractor using the given model.
func NewGeminiExtractor(gen *ai.Gemini) *GeminiExtractor {
	return &GeminiExtractor{gen: gen}
}

// ExtractStatement sends the PDF to the model and parses the JSON it
// returns into a generic object for transformStatement to validate.
func (e *GeminiExtractor) ExtractStatement(ctx context.Context, pdfBytes []byte) (map[string]interface{}, error) {
	rawText, err := e.gen.GenerateWithPDF(ctx, extractionPrompt(), pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("ExtractStatement: %w", err)
	}

	payload, ok := llmjson.ExtractObject(rawText)
	if !ok {
		return nil, fmt.Errorf("ExtractStatement: no JSON object in model response")
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("ExtractStatement: unmarshal JSON: %w", err)
	}

	return parsed, nil
}

func extractionPrompt() string {
	var b strings.Builder

	b.WriteString("You are a financial statement parser for credit card PDF statements.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Parse the attached credit card statement.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a single JSON object.\n\n")

	b.WriteString("The object must have these fields:\n")
	b.WriteString("- \"statement_date\": string, ISO format \"YYYY-MM-DD\"\n")
	b.WriteString("- \"billing_period_start\": string, \"YYYY-MM-DD\"\n")
	b.WriteString("- \"billing_period_end\": string, \"YYYY-MM-DD\"\n")
	b.WriteString("- \"due_date\": string, \"YYYY-MM-DD\"\n")
	b.WriteString("- \"total_amount\": number (total statement balance)\n")
	b.WriteString("- \"minimum_due\": number\n")
	b.WriteString("- \"card_number\": string (masked form as printed, e.g. \"XXXX XXXX XXXX 4321\")\n")
	b.WriteString("- \"card_type\": string (e.g. \"Visa\") or null\n")
	b.WriteString("- \"bank\": string or null\n")
	b.WriteString("- \"transactions\": array of objects with fields:\n")
	b.WriteString("  - \"date\": string, \"YYYY-MM-DD\"\n")
	b.WriteString("  - \"description\": string\n")
	b.WriteString("  - \"amount\": number (positive for charges, negative for payments/refunds)\n")
	b.WriteString("  - \"category\": string (e.g. \"Shopping\", \"Food & Dining\", \"Entertainment\", \"Fuel\", \"Travel\", \"Bills & Utilities\")\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Never output a full unmasked card number.\n")
	b.WriteString("- If a field cannot be determined, set it to null.\n")
	b.WriteString("- Return ONLY valid raw JSON, beginning with \"{\" and ending with \"}\".\n")

	return b.String()
}
