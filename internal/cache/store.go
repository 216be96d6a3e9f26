// Package cache persists per-group, per-day summarization state: how many
// normalized messages are already covered and the running summary text.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/wa-resumo-bot/internal/models"
)

// Store is a key-value store for daily summarization state. Get never
// fails: absent or unreadable entries are reported as the zero value so
// a corrupt cache degrades to a cold start instead of an error.
type Store interface {
	Get(ctx context.Context, chatID string) models.CacheEntry
	Set(ctx context.Context, chatID string, entry models.CacheEntry) error
}

// Key derives the daily cache key for a chat: the calendar date in the
// given timezone plus a short stable hash of the chat ID. A new day
// yields a new key, implicitly abandoning the previous day's entry.
func Key(chatID string, loc *time.Location) string {
	date := time.Now().In(loc).Format("2006-01-02")
	sum := sha1.Sum([]byte(chatID))
	return date + "_" + hex.EncodeToString(sum[:])[:16]
}
