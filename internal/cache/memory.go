package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wa-resumo-bot/internal/models"
)

// MemoryStore is a map-backed Store. State does not survive a restart,
// which matches the daily cache lifecycle for short-lived deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]models.CacheEntry
	timezone *time.Location
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(loc *time.Location) *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]models.CacheEntry),
		timezone: loc,
	}
}

func (s *MemoryStore) Get(_ context.Context, chatID string) models.CacheEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[Key(chatID, s.timezone)]
}

func (s *MemoryStore) Set(_ context.Context, chatID string, entry models.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[Key(chatID, s.timezone)] = entry
	return nil
}
