package insight

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"

	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4.1-mini"

	ModeLLM      = "llm"
	ModeFallback = "fallback"
)

var ErrNoInsight = errors.New("no insight generated")

type Config struct {
	Enabled         bool    `yaml:"enabled"`
	Backend         string  `yaml:"backend"`
	Model           string  `yaml:"model"`
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url"`
	ByAzure         bool    `yaml:"by_azure"`
	APIVersion      string  `yaml:"api_version"`
	TimeoutMs       int     `yaml:"timeout_ms"`
	Temperature     float32 `yaml:"temperature"`
	TopK            int     `yaml:"top_k"`
	TopP            float32 `yaml:"top_p"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:         false,
		Backend:         BackendGemini,
		TimeoutMs:       20000,
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 1024,
	}
}

type Request struct {
	Symbol      string `json:"symbol" validate:"required,max=32"`
	CompanyName string `json:"company_name" validate:"max=256"`
}

type Insight struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Text        string `json:"text"`
	Mode        string `json:"mode"`
	Model       string `json:"model,omitempty"`
}

// generator sends one prompt to a text model and returns its text.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Agent struct {
	enabled        bool
	gen            generator
	backend        string
	modelName      string
	timeout        time.Duration
	disabledReason string
}

func New(cfg Config) *Agent {
	if !cfg.Enabled {
		return &Agent{enabled: false, disabledReason: "disabled by config"}
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendGemini
	}
	if cfg.APIKey == "" {
		cfg.APIKey = envKey(cfg.Backend)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Backend)
	}
	if cfg.APIKey == "" {
		hlog.Warnf("insight disabled: missing api key for %s backend", cfg.Backend)
		return &Agent{enabled: false, disabledReason: "api_key missing"}
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	var (
		gen generator
		err error
	)
	switch cfg.Backend {
	case BackendOpenAI:
		gen, err = newOpenAIGenerator(context.Background(), cfg, timeout)
	case BackendGemini:
		gen, err = newGeminiGenerator(context.Background(), cfg)
	default:
		hlog.Warnf("insight disabled: unknown backend %q", cfg.Backend)
		return &Agent{enabled: false, disabledReason: "unknown backend"}
	}
	if err != nil {
		hlog.Errorf("insight init error: %v", err)
		return &Agent{enabled: false, disabledReason: "init failed"}
	}

	return &Agent{enabled: true, gen: gen, backend: cfg.Backend, modelName: cfg.Model, timeout: timeout}
}

func envKey(backend string) string {
	if backend == BackendOpenAI {
		return os.Getenv("OPENAI_API_KEY")
	}
	return os.Getenv("GEMINI_API_KEY")
}

func defaultModel(backend string) string {
	if backend == BackendOpenAI {
		if v := os.Getenv("OPENAI_MODEL"); v != "" {
			return v
		}
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

func (a *Agent) Enabled() bool {
	return a != nil && a.enabled && a.gen != nil
}

// Generate asks the model for a beginner-level summary of the company. A
// disabled agent answers with the fallback notice and no error; a backend
// failure answers with the fallback notice and the error.
func (a *Agent) Generate(ctx context.Context, req Request) (Insight, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if !a.Enabled() {
		return FallbackInsight(req), nil
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.gen.Generate(ctx, BuildPrompt(req.Symbol, req.CompanyName))
	if err != nil {
		logLLMError(err)
		return FallbackInsight(req), err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Insight{}, ErrNoInsight
	}
	return Insight{
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		Text:        text,
		Mode:        ModeLLM,
		Model:       a.modelName,
	}, nil
}

func Ping(a *Agent, ctx context.Context) (map[string]any, error) {
	if !a.Enabled() {
		reason := "not configured"
		if a != nil && a.disabledReason != "" {
			reason = a.disabledReason
		}
		return map[string]any{"ok": true, "mode": ModeFallback, "reason": reason}, nil
	}
	start := time.Now()
	_, err := a.gen.Generate(ctx, "Reply with the single word: ok")
	latency := time.Since(start).Milliseconds()
	if err != nil {
		logLLMError(err)
		return map[string]any{"ok": true, "mode": ModeFallback, "reason": "llm error"}, err
	}
	return map[string]any{"ok": true, "mode": ModeLLM, "backend": a.backend, "model": a.modelName, "latency_ms": latency}, nil
}

func FallbackInsight(req Request) Insight {
	return Insight{
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		Text:        "AI insights are currently unavailable. Review the quote, fundamentals and price history above, and check recent company news before making any decision.",
		Mode:        ModeFallback,
	}
}
