package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func enabledAgent(gen generator) *Agent {
	return &Agent{enabled: true, gen: gen, backend: BackendGemini, modelName: "test-model", timeout: time.Second}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	p := BuildPrompt("AAPL", "Apple Inc")
	assert.Contains(t, p, "beginner-friendly insights about AAPL (Apple Inc) stock")
	assert.Contains(t, p, "5. Any recent news or market trends affecting it")
	assert.Contains(t, p, "Limit to 200 words")

	assert.Contains(t, BuildPrompt("TCS.NS", " "), "about TCS.NS (TCS.NS) stock")
}

func TestGenerate_Disabled(t *testing.T) {
	t.Parallel()

	a := New(Config{Enabled: false})

	got, err := a.Generate(t.Context(), Request{Symbol: "aapl", CompanyName: "Apple Inc"})

	require.NoError(t, err)
	assert.Equal(t, ModeFallback, got.Mode)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.NotEmpty(t, got.Text)
}

func TestGenerate_LLM(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "  - Apple makes phones.\n"}
	a := enabledAgent(gen)

	got, err := a.Generate(t.Context(), Request{Symbol: " aapl", CompanyName: "Apple Inc"})

	require.NoError(t, err)
	assert.Equal(t, ModeLLM, got.Mode)
	assert.Equal(t, "- Apple makes phones.", got.Text)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "AAPL (Apple Inc)")
}

func TestGenerate_BackendError(t *testing.T) {
	t.Parallel()

	a := enabledAgent(&fakeGenerator{err: errors.New("quota exceeded")})

	got, err := a.Generate(t.Context(), Request{Symbol: "AAPL"})

	require.Error(t, err)
	assert.Equal(t, ModeFallback, got.Mode)
	assert.NotEmpty(t, got.Text)
}

func TestGenerate_EmptyResponse(t *testing.T) {
	t.Parallel()

	a := enabledAgent(&fakeGenerator{text: "   "})

	_, err := a.Generate(t.Context(), Request{Symbol: "AAPL"})

	require.ErrorIs(t, err, ErrNoInsight)
}

func TestPing(t *testing.T) {
	t.Parallel()

	out, err := Ping(New(Config{}), t.Context())
	require.NoError(t, err)
	assert.Equal(t, ModeFallback, out["mode"])
	assert.Equal(t, "disabled by config", out["reason"])

	out, err = Ping(nil, t.Context())
	require.NoError(t, err)
	assert.Equal(t, "not configured", out["reason"])

	out, err = Ping(enabledAgent(&fakeGenerator{text: "ok"}), t.Context())
	require.NoError(t, err)
	assert.Equal(t, ModeLLM, out["mode"])
	assert.Equal(t, "test-model", out["model"])

	out, err = Ping(enabledAgent(&fakeGenerator{err: errors.New("down")}), t.Context())
	require.Error(t, err)
	assert.Equal(t, ModeFallback, out["mode"])
}

func TestNew_MissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	a := New(Config{Enabled: true, Backend: BackendGemini})

	assert.False(t, a.Enabled())
	assert.Equal(t, "api_key missing", a.disabledReason)
}

func TestNew_UnknownBackend(t *testing.T) {
	a := New(Config{Enabled: true, Backend: "llama", APIKey: "k"})

	assert.False(t, a.Enabled())
	assert.Equal(t, "unknown backend", a.disabledReason)
}

func TestGenerationConfig(t *testing.T) {
	t.Parallel()

	gc := generationConfig(DefaultConfig())
	require.NotNil(t, gc.Temperature)
	assert.InDelta(t, 0.7, *gc.Temperature, 1e-6)
	require.NotNil(t, gc.TopK)
	assert.InDelta(t, 40, *gc.TopK, 1e-6)
	require.NotNil(t, gc.TopP)
	assert.InDelta(t, 0.95, *gc.TopP, 1e-6)
	assert.Equal(t, int32(1024), gc.MaxOutputTokens)
}

func TestCandidateText(t *testing.T) {
	t.Parallel()

	assert.Empty(t, candidateText(nil))
	assert.Empty(t, candidateText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "- one\n"}, {Text: "- two"}}},
		}},
	}
	assert.Equal(t, "- one\n- two", candidateText(resp))
}
