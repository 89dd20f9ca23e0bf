package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const systemPrompt = "You explain stocks to people who are new to investing. Be accurate, plain and brief."

type openAIGenerator struct {
	model *openai.ChatModel
	opts  []model.Option
}

func newOpenAIGenerator(ctx context.Context, cfg Config, timeout time.Duration) (*openAIGenerator, error) {
	m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		ByAzure:    cfg.ByAzure,
		APIVersion: cfg.APIVersion,
		Timeout:    timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	opts := []model.Option{
		model.WithTemperature(cfg.Temperature),
		model.WithTopP(cfg.TopP),
	}
	if cfg.MaxOutputTokens > 0 {
		opts = append(opts, model.WithMaxTokens(cfg.MaxOutputTokens))
	}
	return &openAIGenerator{model: m, opts: opts}, nil
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(prompt),
	}
	resp, err := g.model.Generate(ctx, messages, g.opts...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func logLLMError(err error) {
	apiErr := &openai.APIError{}
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if len(msg) > 300 {
			msg = msg[:300] + "..."
		}
		hlog.Warnf("insight api error: status=%d message=%s", apiErr.HTTPStatusCode, msg)
		return
	}
	hlog.Warnf("insight error: %v", err)
}
