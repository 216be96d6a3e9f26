package normalizer

import (
	"reflect"
	"testing"
	"time"

	"github.com/wa-resumo-bot/internal/models"
)

func msg(at time.Time, author, text string) models.Message {
	return models.Message{At: at, Author: author, Text: text, ChatID: "g1"}
}

func TestNormalize_DropsShortAndNoise(t *testing.T) {
	now := time.Now()
	items := []models.Message{
		msg(now, "Ana", "ok"),
		msg(now, "Ana", "OK"),
		msg(now, "Bia", "Bom Dia"),
		msg(now, "Bia", "  kkk  "),
		msg(now, "Ana", "oi"), // two runes after trim
		msg(now, "Bia", "vamos marcar a reunião"),
	}

	out := Normalize(items)
	if len(out) != 1 {
		t.Fatalf("expected 1 message, got %d: %v", len(out), out)
	}
	if out[0].Text != "vamos marcar a reunião" {
		t.Errorf("unexpected survivor: %q", out[0].Text)
	}
}

func TestNormalize_MergesConsecutiveSameAuthor(t *testing.T) {
	t0 := time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	t2 := t0.Add(2 * time.Minute)
	items := []models.Message{
		msg(t0, "Ana", "primeira parte"),
		msg(t1, "Ana", "segunda parte"),
		msg(t2, "Bia", "resposta da Bia"),
	}

	out := Normalize(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(out))
	}
	if out[0].Text != "primeira parte segunda parte" {
		t.Errorf("expected merged text, got %q", out[0].Text)
	}
	if !out[0].At.Equal(t1) {
		t.Errorf("expected later timestamp %v, got %v", t1, out[0].At)
	}
}

func TestNormalize_DeduplicatesAuthorTextPairs(t *testing.T) {
	now := time.Now()
	items := []models.Message{
		msg(now, "Ana", "mesma coisa"),
		msg(now, "Bia", "outra coisa"),
		msg(now, "Ana", "mesma coisa"),
	}

	out := Normalize(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 messages after dedup, got %d", len(out))
	}
}

func TestNormalize_DefaultsMissingAuthor(t *testing.T) {
	out := Normalize([]models.Message{msg(time.Now(), "", "mensagem sem autor")})
	if len(out) != 1 {
		t.Fatalf("expected 1 message, got %d", len(out))
	}
	if out[0].Author != DefaultAuthor {
		t.Errorf("expected author %q, got %q", DefaultAuthor, out[0].Author)
	}
}

func TestNormalize_NoAdjacentSameAuthor(t *testing.T) {
	now := time.Now()
	items := []models.Message{
		msg(now, "Ana", "um assunto"),
		msg(now, "Ana", "mais do mesmo"),
		msg(now, "Bia", "aparte"),
		msg(now, "Ana", "voltando ao assunto"),
		msg(now, "Ana", "e concluindo"),
	}

	out := Normalize(items)
	for i := 1; i < len(out); i++ {
		if out[i].Author == out[i-1].Author {
			t.Fatalf("adjacent entries share author %q", out[i].Author)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t0 := time.Date(2025, 8, 30, 9, 0, 0, 0, time.UTC)
	items := []models.Message{
		msg(t0, "Ana", "bom dia"),
		msg(t0.Add(time.Minute), "Ana", "alguém viu o relatório?"),
		msg(t0.Add(2*time.Minute), "Ana", "preciso dele hoje"),
		msg(t0.Add(3*time.Minute), "Bia", "está na pasta compartilhada"),
		msg(t0.Add(4*time.Minute), "Caio", "blz"),
		msg(t0.Add(5*time.Minute), "Caio", "confirmo, acabei de abrir"),
	}

	once := Normalize(items)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalize is not idempotent:\n once: %v\ntwice: %v", once, twice)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	if out := Normalize(nil); len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}
