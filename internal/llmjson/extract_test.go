package llmjson

import (
	"encoding/json"
	"testing"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{
			name: "fenced json block",
			raw:  "Here you go:\n```json\n{\"bestCardId\": \"a\"}\n```\nHope that helps!",
			want: `{"bestCardId": "a"}`,
			ok:   true,
		},
		{
			name: "fence without language tag",
			raw:  "```\n{\"x\": 1}\n```",
			want: `{"x": 1}`,
			ok:   true,
		},
		{
			name: "bare object",
			raw:  `{"bestCardId": "a", "savingsAmount": 50}`,
			want: `{"bestCardId": "a", "savingsAmount": 50}`,
			ok:   true,
		},
		{
			name: "object surrounded by prose",
			raw:  "The best option is: {\"bestCardId\": \"a\"} based on the rates.",
			want: `{"bestCardId": "a"}`,
			ok:   true,
		},
		{
			name: "nested braces",
			raw:  `prefix {"a": {"b": {"c": 1}}, "d": 2} suffix`,
			want: `{"a": {"b": {"c": 1}}, "d": 2}`,
			ok:   true,
		},
		{
			name: "brace inside string value",
			raw:  `{"explanation": "use {this} card", "id": "a"}`,
			want: `{"explanation": "use {this} card", "id": "a"}`,
			ok:   true,
		},
		{
			name: "escaped quote inside string",
			raw:  `{"note": "he said \"{\" once"}`,
			want: `{"note": "he said \"{\" once"}`,
			ok:   true,
		},
		{
			name: "unterminated object",
			raw:  `{"bestCardId": "a"`,
			ok:   false,
		},
		{
			name: "no json at all",
			raw:  "Sorry, I cannot help with that.",
			ok:   false,
		},
		{
			name: "empty input",
			raw:  "",
			ok:   false,
		},
		{
			name: "fenced block preferred over earlier prose brace",
			raw:  "note: use format {id} please\n```json\n{\"bestCardId\": \"a\"}\n```",
			want: `{"bestCardId": "a"}`,
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractObject(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ExtractObject() ok = %v, want %v (got %q)", ok, tt.ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractObject_ResultParses(t *testing.T) {
	raw := "```json\n{\"bestCardId\": \"hdfc-millennia\", \"savingsAmount\": 50.0, \"comparisonResults\": [{\"cardId\": \"x\"}]}\n```"
	s, ok := ExtractObject(raw)
	if !ok {
		t.Fatal("Expected extraction to succeed")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		t.Fatalf("Extracted text is not valid JSON: %v", err)
	}
	if payload["bestCardId"] != "hdfc-millennia" {
		t.Errorf("bestCardId = %v, want hdfc-millennia", payload["bestCardId"])
	}
}

func TestExtractArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{
			name: "fenced array",
			raw:  "```json\n[{\"date\": \"2024-01-01\"}]\n```",
			want: `[{"date": "2024-01-01"}]`,
			ok:   true,
		},
		{
			name: "bare array with prose",
			raw:  "Transactions: [1, 2, [3, 4]] done",
			want: `[1, 2, [3, 4]]`,
			ok:   true,
		},
		{
			name: "no array",
			raw:  "nothing here",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractArray(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ExtractArray() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractArray() = %q, want %q", got, tt.want)
			}
		})
	}
}
