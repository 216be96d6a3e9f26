package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const openAISystemPrompt = "Escreva resumos narrativos curtos e naturais, 1–2 parágrafos."

// OpenAI summarizes via the OpenAI chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAI creates the OpenAI provider.
func NewOpenAI(apiKey, model string, logger zerolog.Logger) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger.With().Str("component", "openai").Logger(),
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "openai" }

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, previous, block string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: openAISystemPrompt},
	}
	if previous != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Resumo atual:\n%s\n\nAtualize com APENAS o trecho novo abaixo, mantendo o tom e a concisão:", previous),
		})
	} else {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "Gere um resumo narrativo (00:00→agora) do trecho abaixo:",
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: block,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.4,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	o.logger.Debug().
		Str("model", o.model).
		Int("response_length", len([]rune(text))).
		Msg("OpenAI summary generated")
	return text, nil
}
