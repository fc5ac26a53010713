package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/pdfchat/internal/config"
)

type fakeProvider struct {
	name      string
	failTimes int
	calls     int
	models    []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ChatCompletion(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	f.calls++
	f.models = append(f.models, req.Model)
	if f.calls <= f.failTimes {
		return nil, errors.New("rate limited")
	}
	return &ChatResponse{Provider: f.name, Model: req.Model, Content: "ok from " + f.name}, nil
}

func (f *fakeProvider) GenerateEmbedding(_ context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	out := make([][]float32, len(req.Input))
	for i := range req.Input {
		out[i] = []float32{float32(i)}
	}
	return &EmbeddingResponse{Provider: f.name, Model: req.Model, Embeddings: out}, nil
}

func testGateway(primary, fallback *fakeProvider, retries int) *Gateway {
	providers := map[string]Provider{primary.name: primary}
	cfg := config.LLMConfig{
		DefaultProvider: primary.name,
		DefaultModel:    "primary-model",
		FallbackModel:   "fallback-model",
		EmbeddingModel:  "embed-model",
		MaxRetries:      retries,
	}
	if fallback != nil {
		providers[fallback.name] = fallback
		cfg.FallbackProvider = fallback.name
	}
	g := newGateway(cfg, providers)
	g.backoff = func(int) time.Duration { return time.Millisecond }
	return g
}

func TestChatRetriesPrimary(t *testing.T) {
	primary := &fakeProvider{name: "openai", failTimes: 2}
	g := testGateway(primary, nil, 2)

	resp, err := g.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "ok from openai", resp.Content)
	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, "primary-model", primary.models[0])
}

func TestChatFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "openai", failTimes: 10}
	fallback := &fakeProvider{name: "anthropic"}
	g := testGateway(primary, fallback, 1)

	resp, err := g.Chat(context.Background(), ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", resp.Provider)
	assert.Equal(t, 2, primary.calls)
	assert.Equal(t, []string{"fallback-model"}, fallback.models)
}

func TestChatNoFallbackReturnsError(t *testing.T) {
	primary := &fakeProvider{name: "openai", failTimes: 10}
	g := testGateway(primary, nil, 0)

	_, err := g.Chat(context.Background(), ChatRequest{})
	assert.ErrorContains(t, err, "all retries exhausted for openai")
}

func TestEmbed(t *testing.T) {
	g := testGateway(&fakeProvider{name: "openai"}, nil, 0)

	vecs, err := g.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)
	assert.Equal(t, []float32{2}, vecs[2])
}

func TestProviderNotConfigured(t *testing.T) {
	g := newGateway(config.LLMConfig{DefaultProvider: "openai"}, map[string]Provider{})

	_, err := g.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}
