// Package summarizer implements the incremental narrative summarization
// pipeline: fetch today's messages, normalize, fold only the delta since
// the cached cursor into the running summary and deliver the result.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wa-resumo-bot/internal/bridge"
	"github.com/wa-resumo-bot/internal/cache"
	"github.com/wa-resumo-bot/internal/models"
	"github.com/wa-resumo-bot/internal/normalizer"
)

// User-facing notices, delivered through the bridge.
const (
	initPrefix       = "📝 *Resumo do dia*\n"
	updatePrefix     = "📝 *Resumo atualizado*\n"
	noChangeNotice   = "🆗 Nada novo desde o último resumo."
	backfillNotice   = "⚠️ Não consigo buscar o histórico neste cliente. Atualize o bridge ou deixe o bot rodar desde cedo."
	heuristicOpener  = "Ao longo do dia, a conversa girou em torno de: "
	heuristicTailLen = 1200
	heuristicItems   = 12
)

// Bridge is the messaging bridge surface the summarizer needs.
type Bridge interface {
	FetchToday(ctx context.Context, chatID string, limit int) ([]models.Message, error)
	Send(ctx context.Context, chatID, text string) error
}

// Generator is the provider chain surface: first non-empty result wins,
// ("", "") when exhausted.
type Generator interface {
	Generate(ctx context.Context, previous, block string) (text, provider string)
	ActiveName() string
}

// Summarizer orchestrates bridge, normalizer, cache and providers.
type Summarizer struct {
	bridge           Bridge
	cache            cache.Store
	chain            Generator
	timezone         *time.Location
	fetchLimit       int
	statusFetchLimit int
	logger           zerolog.Logger

	// Per-chat serialization: concurrent triggers for the same group
	// would otherwise race on the cursor and lose an update.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates a summarizer.
func New(b Bridge, store cache.Store, chain Generator, timezone string, fetchLimit, statusFetchLimit int, logger zerolog.Logger) (*Summarizer, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	return &Summarizer{
		bridge:           b,
		cache:            store,
		chain:            chain,
		timezone:         loc,
		fetchLimit:       fetchLimit,
		statusFetchLimit: statusFetchLimit,
		logger:           logger.With().Str("component", "summarizer").Logger(),
		locks:            make(map[string]*sync.Mutex),
	}, nil
}

// Summarize produces or updates the day's narrative summary for a group
// and sends it back through the bridge. Failures are reported in the
// result and never mutate the cache.
func (s *Summarizer) Summarize(ctx context.Context, chatID string) models.SummaryResult {
	lock := s.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	items, err := s.bridge.FetchToday(ctx, chatID, s.fetchLimit)
	if err != nil {
		if errors.Is(err, bridge.ErrBackfillNotSupported) {
			s.send(ctx, chatID, backfillNotice)
			return models.SummaryResult{OK: false, Error: "backfill_not_supported"}
		}
		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("Failed to fetch today's messages")
		s.send(ctx, chatID, fmt.Sprintf("⚠️ Erro ao buscar o histórico: %v", err))
		return models.SummaryResult{OK: false, Error: err.Error()}
	}

	norm := normalizer.Normalize(items)
	entry := s.cache.Get(ctx, chatID)

	// Cold path: no summary yet for this group today.
	if entry.Summary == "" {
		block := s.formatBlock(norm)
		summary, providerName := s.chain.Generate(ctx, "", block)
		if summary == "" {
			summary = s.heuristic("", norm)
			providerName = "heuristic"
		}

		s.store(ctx, chatID, models.CacheEntry{LastN: len(norm), Summary: summary})
		s.send(ctx, chatID, initPrefix+summary)

		s.logger.Info().
			Str("chat_id", chatID).
			Str("provider", providerName).
			Int("count", len(norm)).
			Msg("Initial summary generated")
		return models.SummaryResult{OK: true, Mode: models.ModeInit, Count: len(norm)}
	}

	// Warm path: only fold messages beyond the cached cursor.
	var delta []models.Message
	if entry.LastN < len(norm) {
		delta = norm[entry.LastN:]
	}
	if len(delta) == 0 {
		s.send(ctx, chatID, noChangeNotice)
		return models.SummaryResult{OK: true, Mode: models.ModeNoChange, Count: len(norm)}
	}

	block := s.formatBlock(delta)
	summary, providerName := s.chain.Generate(ctx, entry.Summary, block)
	if summary == "" {
		summary = s.heuristic(entry.Summary, delta)
		providerName = "heuristic"
	}

	s.store(ctx, chatID, models.CacheEntry{LastN: len(norm), Summary: summary})
	s.send(ctx, chatID, updatePrefix+summary)

	s.logger.Info().
		Str("chat_id", chatID).
		Str("provider", providerName).
		Int("delta", len(delta)).
		Int("count", len(norm)).
		Msg("Summary updated")
	return models.SummaryResult{OK: true, Mode: models.ModeUpdate, Count: len(norm)}
}

// Status computes a read-only snapshot of today's message counts and
// caching coverage for a group. Fetch failures degrade to zero counts.
func (s *Summarizer) Status(ctx context.Context, chatID string) models.GroupStatus {
	items, err := s.bridge.FetchToday(ctx, chatID, s.statusFetchLimit)
	if err != nil {
		s.logger.Warn().Err(err).Str("chat_id", chatID).Msg("Status fetch failed, reporting zero counts")
		items = nil
	}

	norm := normalizer.Normalize(items)
	entry := s.cache.Get(ctx, chatID)

	return models.GroupStatus{
		Date:       time.Now().In(s.timezone).Format("2006-01-02"),
		MsgsToday:  len(items),
		MsgsNorm:   len(norm),
		Covered:    entry.LastN,
		Provider:   s.chain.ActiveName(),
		HasSummary: entry.Summary != "",
	}
}

// formatBlock renders messages one per line as "- [HH:MM] Author: Text"
// using local time.
func (s *Summarizer) formatBlock(items []models.Message) string {
	lines := make([]string, 0, len(items))
	for _, m := range items {
		ts := m.At.In(s.timezone).Format("15:04")
		lines = append(lines, fmt.Sprintf("- [%s] %s: %s", ts, m.Author, m.Text))
	}
	return strings.Join(lines, "\n")
}

// heuristic is the always-succeeding fallback summarizer: a plain
// recounting of the last few messages, capped in length.
func (s *Summarizer) heuristic(previous string, items []models.Message) string {
	start := 0
	if len(items) > heuristicItems {
		start = len(items) - heuristicItems
	}

	parts := make([]string, 0, len(items)-start)
	for _, m := range items[start:] {
		parts = append(parts, fmt.Sprintf("%s comentou: %s", m.Author, m.Text))
	}
	body := headRunes(strings.Join(parts, " "), heuristicTailLen)

	if previous != "" {
		return tailRunes(previous+" "+body, heuristicTailLen)
	}
	return heuristicOpener + body
}

// store writes the cache entry; a failed write is logged but does not
// fail the request, the summary was already generated.
func (s *Summarizer) store(ctx context.Context, chatID string, entry models.CacheEntry) {
	if err := s.cache.Set(ctx, chatID, entry); err != nil {
		s.logger.Error().
			Err(err).
			Str("chat_id", chatID).
			Int("last_n", entry.LastN).
			Msg("Failed to write cache entry")
	}
}

// SendText delivers arbitrary text to a group through the bridge.
func (s *Summarizer) SendText(ctx context.Context, chatID, text string) {
	s.send(ctx, chatID, text)
}

// send delivers a notice through the bridge, logging failures.
func (s *Summarizer) send(ctx context.Context, chatID, text string) {
	if err := s.bridge.Send(ctx, chatID, text); err != nil {
		s.logger.Error().
			Err(err).
			Str("chat_id", chatID).
			Msg("Failed to send message")
	}
}

// chatLock returns the mutex serializing summarization for one chat.
func (s *Summarizer) chatLock(chatID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[chatID] = lock
	}
	return lock
}

func headRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func tailRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[len(runes)-max:])
}
