package insight

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func newGeminiGenerator(ctx context.Context, cfg Config) (*geminiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiGenerator{
		client: client,
		model:  cfg.Model,
		config: generationConfig(cfg),
	}, nil
}

func generationConfig(cfg Config) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		TopP:            genai.Ptr(cfg.TopP),
		MaxOutputTokens: int32(cfg.MaxOutputTokens),
	}
	if cfg.TopK > 0 {
		gc.TopK = genai.Ptr(float32(cfg.TopK))
	}
	return gc
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return candidateText(result), nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
