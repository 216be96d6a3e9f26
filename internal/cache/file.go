package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/wa-resumo-bot/internal/models"
)

// FileStore keeps one JSON file per (chat, day) under a cache directory.
type FileStore struct {
	dir      string
	timezone *time.Location
	logger   zerolog.Logger
}

// NewFileStore creates the cache directory if needed and returns a
// file-backed store.
func NewFileStore(dir, timezone string, logger zerolog.Logger) (*FileStore, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}

	return &FileStore{
		dir:      dir,
		timezone: loc,
		logger:   logger.With().Str("component", "cache").Logger(),
	}, nil
}

func (s *FileStore) path(chatID string) string {
	return filepath.Join(s.dir, Key(chatID, s.timezone)+".json")
}

// Get reads today's entry for the chat. Missing or malformed files are
// treated as an empty cache.
func (s *FileStore) Get(_ context.Context, chatID string) models.CacheEntry {
	var entry models.CacheEntry

	data, err := os.ReadFile(s.path(chatID))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().
				Err(err).
				Str("chat_id", chatID).
				Msg("Failed to read cache file, treating as empty")
		}
		return entry
	}

	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn().
			Err(err).
			Str("chat_id", chatID).
			Msg("Malformed cache file, treating as empty")
		return models.CacheEntry{}
	}

	return entry
}

// Set replaces today's entry for the chat in full.
func (s *FileStore) Set(_ context.Context, chatID string, entry models.CacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	path := s.path(chatID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}

	s.logger.Debug().
		Str("chat_id", chatID).
		Int("last_n", entry.LastN).
		Msg("Cache entry written")
	return nil
}
