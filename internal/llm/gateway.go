package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNoProvider is returned when every configured backend fails for a turn.
// Callers skip the turn; a provider outage must never be visible as a broken
// chat.
var ErrNoProvider = errors.New("no text-generation provider available")

const (
	attemptsPerProvider = 3
	retryDelay          = time.Second
)

// Gateway holds the configured providers in priority order (default first)
// and falls through the list on unavailability or error.
type Gateway struct {
	providers []Provider
}

// NewGateway builds the provider chain from settings. Unknown provider names
// are logged and skipped; an empty chain is valid and simply means AI
// substitution is unavailable.
func NewGateway(s *Settings) *Gateway {
	g := &Gateway{}
	if !s.Enabled {
		return g
	}

	add := func(name string) {
		ps, ok := s.Providers[name]
		if !ok || !ps.Enabled {
			return
		}
		p, err := newProvider(name, ps)
		if err != nil {
			slog.Warn("Provider unavailable", "provider", name, "error", err)
			return
		}
		g.providers = append(g.providers, p)
		slog.Info("Provider configured", "provider", name, "model", p.Model())
	}

	add(s.DefaultProvider)
	for name := range s.Providers {
		if name == s.DefaultProvider {
			continue
		}
		add(name)
	}
	return g
}

func newProvider(name string, ps ProviderSettings) (Provider, error) {
	switch name {
	case "anthropic":
		return newAnthropic(ps.APIKey(), ps.Model), nil
	case "openai":
		return newOpenAI("openai", ps.APIKey(), ps.Model, ps.BaseURL), nil
	case "grok":
		baseURL := ps.BaseURL
		if baseURL == "" {
			baseURL = "https://api.x.ai/v1"
		}
		return newOpenAI("grok", ps.APIKey(), ps.Model, baseURL), nil
	case "ollama":
		return newOllama(ps.BaseURL, ps.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}

// HasProviders reports whether at least one backend is configured.
func (g *Gateway) HasProviders() bool {
	return len(g.providers) > 0
}

// Providers returns the configured chain in selection order.
func (g *Gateway) Providers() []Provider {
	return g.providers
}

// Generate tries each provider in order: skip if unavailable at call time,
// retry a bounded number of times on error, then fall through to the next.
// When the whole chain fails the call returns ErrNoProvider.
func (g *Gateway) Generate(ctx context.Context, req Request) (string, error) {
	for _, p := range g.providers {
		if !p.Available(ctx) {
			slog.Debug("Provider unavailable, falling through", "provider", p.Name())
			continue
		}

		for attempt := 0; attempt < attemptsPerProvider; attempt++ {
			out, err := p.Generate(ctx, req)
			if err == nil && out != "" {
				return out, nil
			}
			slog.Warn("Generation attempt failed",
				"provider", p.Name(), "attempt", attempt+1, "error", err)

			if attempt < attemptsPerProvider-1 {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(retryDelay):
				}
			}
		}
	}
	return "", ErrNoProvider
}
