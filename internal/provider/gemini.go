package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Gemini summarizes via the Gemini API.
type Gemini struct {
	apiKey      string
	model       string
	logger      zerolog.Logger
	genaiClient *genai.Client
	mu          sync.Mutex
}

// NewGemini creates the Gemini provider. The underlying client is
// created lazily on first use.
func NewGemini(apiKey, model string, logger zerolog.Logger) *Gemini {
	return &Gemini{
		apiKey: apiKey,
		model:  model,
		logger: logger.With().Str("component", "gemini").Logger(),
	}
}

// getClient returns or creates a genai client (thread-safe)
func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.genaiClient != nil {
		return g.genaiClient, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	g.genaiClient = client
	g.logger.Info().Msg("Gemini client created and cached")
	return g.genaiClient, nil
}

// Close closes the underlying client and releases resources.
func (g *Gemini) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.genaiClient != nil {
		err := g.genaiClient.Close()
		g.genaiClient = nil
		if err != nil {
			g.logger.Error().Err(err).Msg("Failed to close Gemini client")
			return err
		}
		g.logger.Info().Msg("Gemini client closed")
	}
	return nil
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini" }

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, previous, block string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get genai client: %w", err)
	}

	model := client.GenerativeModel(g.model)

	var prompt string
	if previous != "" {
		prompt = fmt.Sprintf(
			"Atualize o resumo narrativo (1–2 parágrafos, PT-BR, tom humano) com APENAS o trecho novo.\n\nResumo atual:\n%s\n\nTrecho novo:\n%s",
			previous, block,
		)
	} else {
		prompt = "Resuma narrativamente (1–2 parágrafos, PT-BR) o trecho abaixo (00:00→agora), sem bullets:\n\n" + block
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates from LLM")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content parts in response")
	}

	// Extract text from all parts
	var responseText strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(responseText.String())

	g.logger.Debug().
		Str("model", g.model).
		Int("response_length", len([]rune(text))).
		Msg("Gemini summary generated")
	return text, nil
}
