package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wa-resumo-bot/internal/bridge"
	"github.com/wa-resumo-bot/internal/cache"
	"github.com/wa-resumo-bot/internal/config"
	"github.com/wa-resumo-bot/internal/models"
	"github.com/wa-resumo-bot/internal/provider"
	"github.com/wa-resumo-bot/internal/ratelimit"
	"github.com/wa-resumo-bot/internal/scheduler"
	"github.com/wa-resumo-bot/internal/server"
	"github.com/wa-resumo-bot/internal/summarizer"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.Environment)
	logger.Info().
		Str("environment", cfg.Environment).
		Str("timezone", cfg.Timezone).
		Str("bridge_url", cfg.BridgeURL).
		Str("cache_backend", cfg.CacheBackend).
		Bool("openai_configured", cfg.OpenAIAPIKey != "").
		Bool("gemini_configured", cfg.GeminiAPIKey != "").
		Msg("Starting summary server")

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize cache store
	logger.Info().Str("backend", cfg.CacheBackend).Msg("Initializing cache store...")
	store, err := newCacheStore(cfg.CacheBackend, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create cache store")
	}

	// Initialize bridge client
	logger.Info().Msg("Initializing bridge client...")
	bridgeClient, err := bridge.NewClient(
		cfg.BridgeURL,
		cfg.AccessToken,
		cfg.Timezone,
		cfg.FetchTimeout,
		cfg.SendTimeout,
		logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create bridge client")
	}

	// Initialize provider chain in priority order: OpenAI, then Gemini.
	// An empty chain falls back to the heuristic summarizer.
	var providers []provider.Provider
	if cfg.OpenAIAPIKey != "" {
		logger.Info().Str("model", cfg.OpenAIModel).Msg("OpenAI provider enabled")
		providers = append(providers, provider.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger))
	}
	var gemini *provider.Gemini
	if cfg.GeminiAPIKey != "" {
		logger.Info().Str("model", cfg.GeminiModel).Msg("Gemini provider enabled")
		gemini = provider.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		providers = append(providers, gemini)
	}
	chain := provider.NewChain(logger, providers...)
	if gemini != nil {
		defer func() {
			if err := gemini.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close Gemini provider")
			}
		}()
	}

	// Initialize summarizer
	sum, err := summarizer.New(
		bridgeClient,
		store,
		chain,
		cfg.Timezone,
		cfg.FetchLimit,
		cfg.StatusFetchLimit,
		logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create summarizer")
	}

	// Initialize rate limiter
	limiter := ratelimit.NewLimiter(map[string]int{
		ratelimit.BucketWebhook: 5,
		ratelimit.BucketSummary: 2,
	}, logger)

	// Initialize scheduler (if configured)
	var sched *scheduler.Scheduler
	if cfg.SummaryCron != "" {
		logger.Info().Str("cron", cfg.SummaryCron).Msg("Initializing summary scheduler...")
		sched, err = scheduler.New(sum, cfg.SummaryCron, cfg.SummaryChatIDs, cfg.Timezone, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create scheduler")
		}
		if err := sched.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Initialize HTTP server
	srv := server.New(cfg.ListenAddr, sum, limiter, cfg.AccessToken, logger)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in a goroutine
	srvErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErrChan <- err
		}
	}()

	logger.Info().Str("addr", cfg.ListenAddr).Msg("Server is running. Press Ctrl+C to stop.")

	// Wait for termination signal or server error
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received termination signal")
	case err := <-srvErrChan:
		logger.Error().Err(err).Msg("Server stopped with error")
	}

	// Graceful shutdown
	logger.Info().Msg("Initiating graceful shutdown...")
	cancel()

	if sched != nil {
		logger.Info().Msg("Stopping scheduler...")
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Shutdown timeout exceeded, some requests may be lost")
	} else {
		logger.Info().Msg("Graceful shutdown completed")
	}

	logger.Info().Msg("Server stopped")
}

// newCacheStore selects the cache backend from configuration
func newCacheStore(backend string, cfg *models.Config, logger zerolog.Logger) (cache.Store, error) {
	switch backend {
	case "memory":
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, err
		}
		return cache.NewMemoryStore(loc), nil
	case "supabase":
		return cache.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Timezone, logger)
	default:
		return cache.NewFileStore(cfg.CacheDir, cfg.Timezone, logger)
	}
}

// setupLogger configures and returns a zerolog logger
func setupLogger(level, environment string) zerolog.Logger {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	var logger zerolog.Logger
	if environment == "development" {
		// Pretty console output for development
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	} else {
		// JSON output for production
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return logger
}
