// Package advisor asks a hosted model for inventory advice. Advice is purely
// informational and never mutates the store.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/stocksentry/stocksentry/internal/model"
)

// Advisor produces free-text advice from the current inventory state.
type Advisor interface {
	Suggest(ctx context.Context, status model.StatusSummary) (string, error)
	Ask(ctx context.Context, prompt string) (string, error)
}

// GeminiAdvisor calls the Gemini API for suggestions.
type GeminiAdvisor struct {
	client    *genai.Client
	modelName string
}

// NewGemini builds an advisor backed by the given model.
func NewGemini(ctx context.Context, apiKey, modelName string) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiAdvisor{client: client, modelName: modelName}, nil
}

// Close releases the underlying client.
func (g *GeminiAdvisor) Close() error { return g.client.Close() }

// Ask sends a free-text prompt framed as an inventory-assistant conversation.
func (g *GeminiAdvisor) Ask(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, "You are an inventory management assistant. Respond conversationally to: "+prompt)
}

// Suggest asks for concrete management actions based on the status summary.
func (g *GeminiAdvisor) Suggest(ctx context.Context, status model.StatusSummary) (string, error) {
	prompt := fmt.Sprintf(
		"Based on this inventory status, suggest 3-5 management actions:\n"+
			"- Total products: %d\n- Total units: %d\n- Out of stock: %d\n- Low stock: %d\n- Total inventory value: $%.2f\n"+
			"Respond as a short conversational message.",
		status.TotalProducts, status.TotalUnits, len(status.Out), len(status.Low), status.TotalValue,
	)
	return g.generate(ctx, prompt)
}

func (g *GeminiAdvisor) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.GenerativeModel(g.modelName).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty model response")
	}
	return b.String(), nil
}
