package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BridgeURL != "http://127.0.0.1:3000" {
		t.Errorf("unexpected default bridge url %q", cfg.BridgeURL)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("unexpected default openai model %q", cfg.OpenAIModel)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("unexpected default gemini model %q", cfg.GeminiModel)
	}
	if cfg.FetchTimeout != 30 || cfg.SendTimeout != 10 {
		t.Errorf("unexpected default timeouts: fetch=%d send=%d", cfg.FetchTimeout, cfg.SendTimeout)
	}
	if cfg.FetchLimit != 1200 || cfg.StatusFetchLimit != 200 {
		t.Errorf("unexpected default limits: fetch=%d status=%d", cfg.FetchLimit, cfg.StatusFetchLimit)
	}
	if cfg.CacheBackend != "file" {
		t.Errorf("unexpected default cache backend %q", cfg.CacheBackend)
	}
}

func TestLoad_TrimsBridgeURLSlash(t *testing.T) {
	t.Setenv("BRIDGE_URL", "http://bridge:3000/")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BridgeURL != "http://bridge:3000" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BridgeURL)
	}
}

func TestLoad_InvalidCacheBackend(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "CACHE_BACKEND") {
		t.Errorf("expected cache backend error, got %v", err)
	}
}

func TestLoad_SupabaseBackendRequiresCredentials(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "SUPABASE_URL") {
		t.Errorf("expected supabase url error, got %v", err)
	}

	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	_, err = Load()
	if err == nil || !strings.Contains(err.Error(), "SUPABASE_KEY") {
		t.Errorf("expected supabase key error, got %v", err)
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "TIMEZONE") {
		t.Errorf("expected timezone error, got %v", err)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("expected log level error, got %v", err)
	}
}

func TestLoad_SummaryCronRequiresChatIDs(t *testing.T) {
	t.Setenv("SUMMARY_CRON", "0 20 * * *")
	t.Setenv("SUMMARY_CHAT_IDS", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "SUMMARY_CHAT_IDS") {
		t.Errorf("expected chat ids error, got %v", err)
	}
}

func TestLoad_ParsesChatIDList(t *testing.T) {
	t.Setenv("SUMMARY_CRON", "0 20 * * *")
	t.Setenv("SUMMARY_CHAT_IDS", "a@g.us, b@g.us ,, c@g.us")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.SummaryChatIDs) != 3 {
		t.Fatalf("expected 3 chat ids, got %v", cfg.SummaryChatIDs)
	}
	if cfg.SummaryChatIDs[1] != "b@g.us" {
		t.Errorf("expected trimmed entry, got %q", cfg.SummaryChatIDs[1])
	}
}
