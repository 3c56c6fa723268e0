// Package ai holds the Gemini-backed text generation used by the
// recommendation advisor and the statement extractor. It is the only
// package that talks to the model API.
package ai

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// Enabled reports whether a model credential is configured. Callers use
// this to decide whether to wire the AI path at all; without it the
// service runs rule-based only.
func Enabled() bool {
	return os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != ""
}

// Gemini generates text with a fixed model. The genai client picks up
// credentials from the environment.
type Gemini struct {
	model string
}

// NewGemini creates a generator for the given model name.
func NewGemini(model string) *Gemini {
	return &Gemini{model: model}
}

// Generate sends a single text prompt and returns the raw response.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, []*genai.Part{{Text: prompt}})
}

// GenerateWithPDF sends a prompt alongside an attached PDF, used for
// statement extraction.
func (g *Gemini) GenerateWithPDF(ctx context.Context, prompt string, pdfBytes []byte) (string, error) {
	return g.generate(ctx, []*genai.Part{
		{Text: prompt},
		{
			InlineData: &genai.Blob{
				MIMEType: "application/pdf",
				Data:     pdfBytes,
			},
		},
	})
}

func (g *Gemini) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("Generate: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: parts,
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Generate: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("Generate: empty response from model")
	}

	return rawText, nil
}
