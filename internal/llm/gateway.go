package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/pdfchat/internal/config"
)

// Gateway routes chat to a primary provider with retry, then to an optional
// fallback provider. Embeddings always go to the primary provider.
type Gateway struct {
	providers      map[string]Provider
	primary        string
	primaryModel   string
	fallback       string
	fallbackModel  string
	embeddingModel string
	maxRetries     int
	backoff        func(attempt int) time.Duration
}

func NewGateway(cfg config.LLMConfig) *Gateway {
	providers := make(map[string]Provider)
	if cfg.OpenAIKey != "" {
		providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	}
	if cfg.AnthropicKey != "" {
		providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	return newGateway(cfg, providers)
}

func newGateway(cfg config.LLMConfig, providers map[string]Provider) *Gateway {
	return &Gateway{
		providers:      providers,
		primary:        cfg.DefaultProvider,
		primaryModel:   cfg.DefaultModel,
		fallback:       cfg.FallbackProvider,
		fallbackModel:  cfg.FallbackModel,
		embeddingModel: cfg.EmbeddingModel,
		maxRetries:     cfg.MaxRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * 500 * time.Millisecond
		},
	}
}

func (g *Gateway) provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotConfigured, name)
	}
	return p, nil
}

// Chat fills in the model for whichever provider serves the request; a model
// set on req is only honoured by the primary provider.
func (g *Gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	primaryReq := req
	if primaryReq.Model == "" {
		primaryReq.Model = g.primaryModel
	}

	resp, err := g.chatWithRetry(ctx, g.primary, primaryReq)
	if err == nil || g.fallback == "" || g.fallback == g.primary {
		return resp, err
	}

	slog.Warn("primary provider failed, trying fallback",
		"primary", g.primary,
		"fallback", g.fallback,
		"error", err,
	)
	fallbackReq := req
	fallbackReq.Model = g.fallbackModel
	return g.chatWithRetry(ctx, g.fallback, fallbackReq)
}

func (g *Gateway) chatWithRetry(ctx context.Context, name string, req ChatRequest) (*ChatResponse, error) {
	p, err := g.provider(name)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.backoff(attempt)):
			}
			slog.Debug("retrying LLM call", "provider", name, "attempt", attempt)
		}

		resp, err := p.ChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all retries exhausted for %s: %w", name, lastErr)
}

// Embed returns one vector per input, in input order.
func (g *Gateway) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	p, err := g.provider(g.primary)
	if err != nil {
		return nil, err
	}
	resp, err := p.GenerateEmbedding(ctx, EmbeddingRequest{Model: g.embeddingModel, Input: inputs})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), len(inputs))
	}
	return resp.Embeddings, nil
}
