// Package provider defines the text-generation providers used to turn a
// block of chat lines into a narrative summary, and the fallback chain
// that tries them in priority order.
package provider

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Provider generates a 1-2 paragraph narrative summary. previous is the
// running summary to update, empty on a cold start; block is the newly
// formatted chat lines.
type Provider interface {
	Name() string
	Generate(ctx context.Context, previous, block string) (string, error)
}

// Chain tries providers in order; the first non-empty result wins.
type Chain struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewChain creates a provider chain. Order defines priority.
func NewChain(logger zerolog.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger.With().Str("component", "provider_chain").Logger(),
	}
}

// Generate runs the chain. Provider errors are logged and swallowed so a
// failing provider only costs its turn. Returns the summary and the name
// of the provider that produced it, or ("", "") when every provider
// failed or returned empty.
func (c *Chain) Generate(ctx context.Context, previous, block string) (string, string) {
	for _, p := range c.providers {
		text, err := p.Generate(ctx, previous, block)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("provider", p.Name()).
				Msg("Provider failed, trying next")
			continue
		}
		if text = strings.TrimSpace(text); text == "" {
			c.logger.Warn().
				Str("provider", p.Name()).
				Msg("Provider returned empty summary, trying next")
			continue
		}
		return text, p.Name()
	}
	return "", ""
}

// ActiveName reports which provider would handle the next request:
// the first configured provider, or "heuristic" when the chain is empty.
func (c *Chain) ActiveName() string {
	if len(c.providers) > 0 {
		return c.providers[0].Name()
	}
	return "heuristic"
}
