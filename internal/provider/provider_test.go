package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestChain_FirstSuccessWins(t *testing.T) {
	first := &stubProvider{name: "openai", text: "resumo do primeiro"}
	second := &stubProvider{name: "gemini", text: "resumo do segundo"}
	chain := NewChain(zerolog.Nop(), first, second)

	text, name := chain.Generate(context.Background(), "", "bloco")
	if text != "resumo do primeiro" || name != "openai" {
		t.Errorf("expected first provider to win, got %q from %q", text, name)
	}
	if second.calls != 0 {
		t.Error("second provider should not be called when first succeeds")
	}
}

func TestChain_ErrorFallsThrough(t *testing.T) {
	first := &stubProvider{name: "openai", err: errors.New("quota exceeded")}
	second := &stubProvider{name: "gemini", text: "resumo do gemini"}
	chain := NewChain(zerolog.Nop(), first, second)

	text, name := chain.Generate(context.Background(), "", "bloco")
	if text != "resumo do gemini" || name != "gemini" {
		t.Errorf("expected fall-through to second provider, got %q from %q", text, name)
	}
}

func TestChain_EmptyResultFallsThrough(t *testing.T) {
	first := &stubProvider{name: "openai", text: "   "}
	second := &stubProvider{name: "gemini", text: "resumo"}
	chain := NewChain(zerolog.Nop(), first, second)

	text, name := chain.Generate(context.Background(), "", "bloco")
	if text != "resumo" || name != "gemini" {
		t.Errorf("blank result should fall through, got %q from %q", text, name)
	}
}

func TestChain_Exhausted(t *testing.T) {
	first := &stubProvider{name: "openai", err: errors.New("down")}
	second := &stubProvider{name: "gemini", text: ""}
	chain := NewChain(zerolog.Nop(), first, second)

	text, name := chain.Generate(context.Background(), "anterior", "bloco")
	if text != "" || name != "" {
		t.Errorf("exhausted chain should report empty, got %q from %q", text, name)
	}
}

func TestChain_ActiveName(t *testing.T) {
	if name := NewChain(zerolog.Nop()).ActiveName(); name != "heuristic" {
		t.Errorf("empty chain should report heuristic, got %q", name)
	}

	chain := NewChain(zerolog.Nop(), &stubProvider{name: "openai"}, &stubProvider{name: "gemini"})
	if name := chain.ActiveName(); name != "openai" {
		t.Errorf("expected openai, got %q", name)
	}
}
