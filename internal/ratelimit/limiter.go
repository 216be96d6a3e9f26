package ratelimit

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Endpoint bucket names used by the HTTP layer.
const (
	BucketWebhook = "webhook"
	BucketSummary = "summary"
)

// bucket is a single token bucket. It refills to full capacity once at
// least one second has elapsed since the last refill.
type bucket struct {
	capacity   int
	tokens     int
	lastRefill time.Time
}

// Limiter manages per-endpoint token buckets
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	logger  zerolog.Logger
}

// NewLimiter creates a rate limiter with one bucket per named endpoint,
// each starting full at the given capacity.
func NewLimiter(capacities map[string]int, logger zerolog.Logger) *Limiter {
	now := time.Now()
	buckets := make(map[string]*bucket, len(capacities))
	for name, capacity := range capacities {
		buckets[name] = &bucket{
			capacity:   capacity,
			tokens:     capacity,
			lastRefill: now,
		}
	}

	return &Limiter{
		buckets: buckets,
		now:     time.Now,
		logger:  logger.With().Str("component", "ratelimit").Logger(),
	}
}

// Take consumes one token from the named bucket. It returns false when
// the bucket is empty or unknown; denied requests are never queued.
func (l *Limiter) Take(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[name]
	if !ok {
		l.logger.Warn().Str("bucket", name).Msg("Unknown rate limit bucket")
		return false
	}

	now := l.now()
	if now.Sub(b.lastRefill) >= time.Second {
		b.tokens = b.capacity
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	l.logger.Debug().
		Str("bucket", name).
		Int("capacity", b.capacity).
		Msg("Rate limit exceeded")
	return false
}
