package ai

import (
	"context"
	"errors"
	"io"
	"sync"

	"legal-reader/internal/config"
	"legal-reader/internal/content"
	"legal-reader/internal/logger"
	"legal-reader/internal/telemetry"
)

var ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY for related-sections lookups")

// Finder is the remote relevance call the related-sections queue depends on.
type Finder interface {
	FindRelated(ctx context.Context, section content.Section, candidates []string) ([]string, error)
}

// Factory builds the remote client on first use.
type Factory func(ctx context.Context) (Finder, error)

// Provider acquires the remote client once, the first time a lookup needs it,
// and hands the same client to every later caller. A failed acquisition is not
// remembered, so the next lookup tries again.
type Provider struct {
	factory Factory

	mu     sync.Mutex
	finder Finder
}

func NewProvider(factory Factory) *Provider {
	return &Provider{factory: factory}
}

// NewGeminiProvider reads the API key from cfg only when the client is first acquired.
func NewGeminiProvider(cfg *config.Config, metrics *telemetry.Metrics) *Provider {
	return NewProvider(func(ctx context.Context) (Finder, error) {
		client, err := NewGeminiClient(ctx, ClientOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			MaxRPM:  cfg.GeminiMaxRPM,
			Metrics: metrics,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("Gemini client initialized", "model", cfg.GeminiModel, "max_rpm", cfg.GeminiMaxRPM)
		return client, nil
	})
}

func (p *Provider) Acquire(ctx context.Context) (Finder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finder != nil {
		return p.finder, nil
	}
	f, err := p.factory(ctx)
	if err != nil {
		return nil, err
	}
	p.finder = f
	return f, nil
}

func (p *Provider) FindRelated(ctx context.Context, section content.Section, candidates []string) ([]string, error) {
	f, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return f.FindRelated(ctx, section, candidates)
}

// Close releases the client if one was acquired.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.finder.(io.Closer); ok {
		p.finder = nil
		return c.Close()
	}
	p.finder = nil
	return nil
}
