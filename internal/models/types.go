package models

import "time"

// Message is a single chat message as delivered by the bridge.
type Message struct {
	At       time.Time `json:"at"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	ChatID   string    `json:"chatId"`
	ChatName string    `json:"chatName,omitempty"`
}

// CacheEntry is the per-group, per-day summarization state.
// LastN counts how many normalized messages are already folded
// into Summary.
type CacheEntry struct {
	LastN   int    `json:"last_n"`
	Summary string `json:"summary"`
}

// Summary modes returned by the incremental summarizer.
const (
	ModeInit     = "init"
	ModeNoChange = "nochange"
	ModeUpdate   = "update"
)

// SummaryResult is the outcome of one summarization run.
type SummaryResult struct {
	OK    bool   `json:"ok"`
	Mode  string `json:"mode,omitempty"`
	Count int    `json:"count,omitempty"`
	Error string `json:"error,omitempty"`
}

// GroupStatus is a read-only snapshot of a group's summarization state.
type GroupStatus struct {
	Date       string `json:"date"`
	MsgsToday  int    `json:"msgs_today"`
	MsgsNorm   int    `json:"msgs_norm"`
	Covered    int    `json:"covered"`
	Provider   string `json:"provider"`
	HasSummary bool   `json:"has_summary"`
}

// Config represents server configuration
type Config struct {
	// Provider settings
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	// Bridge settings
	BridgeURL    string
	AccessToken  string
	FetchTimeout int
	SendTimeout  int

	// Fetch limits
	FetchLimit       int
	StatusFetchLimit int

	// Cache settings
	CacheBackend string
	CacheDir     string
	SupabaseURL  string
	SupabaseKey  string

	// App settings
	ListenAddr  string
	Timezone    string
	LogLevel    string
	Environment string

	// Scheduled summaries (optional)
	SummaryCron    string
	SummaryChatIDs []string
}
