package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	supa "github.com/supabase-community/supabase-go"
	"github.com/wa-resumo-bot/internal/models"
)

const cacheTable = "summary_cache"

// SupabaseStore keeps daily summarization state in a Supabase table,
// one row per cache key. An alternative to FileStore for deployments
// without a persistent disk.
type SupabaseStore struct {
	client   *supa.Client
	timezone *time.Location
	logger   zerolog.Logger
}

// NewSupabaseStore creates a Supabase-backed store.
func NewSupabaseStore(supabaseURL, supabaseKey, timezone string, logger zerolog.Logger) (*SupabaseStore, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	client, err := supa.NewClient(supabaseURL, supabaseKey, &supa.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &SupabaseStore{
		client:   client,
		timezone: loc,
		logger:   logger.With().Str("component", "cache").Logger(),
	}, nil
}

type cacheRow struct {
	CacheKey string `json:"cache_key"`
	LastN    int    `json:"last_n"`
	Summary  string `json:"summary"`
}

// Get reads today's entry for the chat. Any query or decode failure is
// reported as an empty cache.
func (s *SupabaseStore) Get(_ context.Context, chatID string) models.CacheEntry {
	key := Key(chatID, s.timezone)

	data, _, err := s.client.From(cacheTable).
		Select("cache_key,last_n,summary", "exact", false).
		Eq("cache_key", key).
		Limit(1, "").
		Execute()
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("chat_id", chatID).
			Msg("Failed to query cache table, treating as empty")
		return models.CacheEntry{}
	}

	var rows []cacheRow
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return models.CacheEntry{}
	}

	return models.CacheEntry{LastN: rows[0].LastN, Summary: rows[0].Summary}
}

// Set upserts today's entry for the chat.
func (s *SupabaseStore) Set(_ context.Context, chatID string, entry models.CacheEntry) error {
	key := Key(chatID, s.timezone)

	row := cacheRow{
		CacheKey: key,
		LastN:    entry.LastN,
		Summary:  entry.Summary,
	}

	_, _, err := s.client.From(cacheTable).
		Insert(row, true, "cache_key", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}

	s.logger.Debug().
		Str("chat_id", chatID).
		Int("last_n", entry.LastN).
		Msg("Cache entry written")
	return nil
}
