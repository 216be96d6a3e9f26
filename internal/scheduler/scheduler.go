// Package scheduler runs automatic summaries on a cron schedule for a
// fixed set of chats. Disabled unless a schedule is configured; the
// on-demand webhook flow does not depend on it.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/wa-resumo-bot/internal/summarizer"
)

// Scheduler triggers periodic summarization runs.
type Scheduler struct {
	summarizer *summarizer.Summarizer
	spec       string
	chatIDs    []string
	timezone   *time.Location
	cron       *cron.Cron
	logger     zerolog.Logger
}

// New creates a scheduler for the given cron spec and chats.
func New(sum *summarizer.Summarizer, spec string, chatIDs []string, timezone string, logger zerolog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	return &Scheduler{
		summarizer: sum,
		spec:       spec,
		chatIDs:    chatIDs,
		timezone:   loc,
		logger:     logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Start registers the cron job and starts the runner. Runs are executed
// with the given base context until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithLocation(s.timezone))

	_, err := s.cron.AddFunc(s.spec, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("spec", s.spec).
		Int("chats", len(s.chatIDs)).
		Msg("Scheduler started")
	return nil
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.logger.Info().Msg("Scheduler stopped")
	}
}

func (s *Scheduler) run(ctx context.Context) {
	for _, chatID := range s.chatIDs {
		result := s.summarizer.Summarize(ctx, chatID)
		if !result.OK {
			s.logger.Error().
				Str("chat_id", chatID).
				Str("error", result.Error).
				Msg("Scheduled summary failed")
			continue
		}
		s.logger.Info().
			Str("chat_id", chatID).
			Str("mode", result.Mode).
			Int("count", result.Count).
			Msg("Scheduled summary completed")
	}
}
