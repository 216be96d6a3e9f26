package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/wa-resumo-bot/internal/models"
)

// Load loads configuration from environment variables
// It first attempts to load from .env file, then reads environment variables
func Load() (*models.Config, error) {
	// Try to load .env file (optional, ignore error if not found)
	_ = godotenv.Load()

	config := &models.Config{
		// Provider settings
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		// Bridge settings
		BridgeURL:    getEnv("BRIDGE_URL", "http://127.0.0.1:3000"),
		AccessToken:  getEnv("ACCESS_TOKEN", ""),
		FetchTimeout: getEnvInt("FETCH_TIMEOUT", 30),
		SendTimeout:  getEnvInt("SEND_TIMEOUT", 10),

		// Fetch limits
		FetchLimit:       getEnvInt("FETCH_LIMIT", 1200),
		StatusFetchLimit: getEnvInt("STATUS_FETCH_LIMIT", 200),

		// Cache settings
		CacheBackend: getEnv("CACHE_BACKEND", "file"),
		CacheDir:     getEnv("CACHE_DIR", "cache"),
		SupabaseURL:  getEnv("SUPABASE_URL", ""),
		SupabaseKey:  getEnv("SUPABASE_KEY", ""),

		// App settings
		ListenAddr:  getEnv("LISTEN_ADDR", ":8000"),
		Timezone:    getEnv("TIMEZONE", "America/Sao_Paulo"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "production"),

		// Scheduled summaries
		SummaryCron:    getEnv("SUMMARY_CRON", ""),
		SummaryChatIDs: getEnvList("SUMMARY_CHAT_IDS"),
	}

	// Validate configuration
	if err := validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate checks if all required configuration values are set
func validate(cfg *models.Config) error {
	if cfg.BridgeURL == "" {
		return fmt.Errorf("BRIDGE_URL is required")
	}
	if strings.HasSuffix(cfg.BridgeURL, "/") {
		cfg.BridgeURL = strings.TrimRight(cfg.BridgeURL, "/")
	}

	// Validate positive values
	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %d", cfg.FetchTimeout)
	}
	if cfg.SendTimeout <= 0 {
		return fmt.Errorf("SEND_TIMEOUT must be positive, got %d", cfg.SendTimeout)
	}
	if cfg.FetchLimit <= 0 {
		return fmt.Errorf("FETCH_LIMIT must be positive, got %d", cfg.FetchLimit)
	}
	if cfg.StatusFetchLimit <= 0 {
		return fmt.Errorf("STATUS_FETCH_LIMIT must be positive, got %d", cfg.StatusFetchLimit)
	}

	// Validate cache backend
	switch cfg.CacheBackend {
	case "file", "memory":
	case "supabase":
		if cfg.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required when CACHE_BACKEND=supabase")
		}
		if cfg.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_KEY is required when CACHE_BACKEND=supabase")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: file, memory, supabase; got %s", cfg.CacheBackend)
	}

	// Validate timezone
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %s: %w", cfg.Timezone, err)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %s", cfg.LogLevel)
	}

	if cfg.SummaryCron != "" && len(cfg.SummaryChatIDs) == 0 {
		return fmt.Errorf("SUMMARY_CHAT_IDS is required when SUMMARY_CRON is set")
	}

	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves environment variable as integer or returns default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvList retrieves a comma-separated environment variable as a slice
func getEnvList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
