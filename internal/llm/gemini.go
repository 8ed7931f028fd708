// Package llm talks to the generative-text model.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini generates text with a single GenerateContent round trip.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini uses apiKey when set (Gemini API), otherwise the environment and
// application default credentials decide the backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	cfg := &genai.ClientConfig{}
	if apiKey != "" {
		cfg.APIKey = apiKey
		cfg.Backend = genai.BackendGeminiAPI
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	text := candidateText(resp)
	if text == "" {
		return "", fmt.Errorf("no response candidates from Gemini")
	}
	return text, nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// Mock returns a canned reply. Enabled with USE_MOCK_LLM=true.
type Mock struct {
	Reply string
}

const mockReply = "MOCK REPLY: Thank you for sharing how you feel. You are not alone, and reaching out is a brave first step."

func (m Mock) Generate(_ context.Context, _ string) (string, error) {
	if m.Reply != "" {
		return m.Reply, nil
	}
	return mockReply, nil
}
