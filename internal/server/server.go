// Package server exposes the inbound HTTP surface: health check, chat
// event webhook and the manual summary trigger.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wa-resumo-bot/internal/models"
	"github.com/wa-resumo-bot/internal/ratelimit"
	"github.com/wa-resumo-bot/internal/summarizer"
)

// Server handles inbound HTTP requests.
type Server struct {
	summarizer  *summarizer.Summarizer
	limiter     *ratelimit.Limiter
	accessToken string
	logger      zerolog.Logger
	httpServer  *http.Server
}

// New creates the HTTP server.
func New(addr string, sum *summarizer.Summarizer, limiter *ratelimit.Limiter, accessToken string, logger zerolog.Logger) *Server {
	s := &Server{
		summarizer:  sum,
		limiter:     limiter,
		accessToken: accessToken,
		logger:      logger.With().Str("component", "server").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/summary/run", s.handleSummaryRun)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

// Start starts serving. Blocks until the listener fails or the server
// is shut down.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.accessToken != "" && r.Header.Get("x-access-token") != s.accessToken {
		s.writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}

	var msg models.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if msg.ChatID == "" {
		http.Error(w, "chatId is required", http.StatusBadRequest)
		return
	}

	if !s.limiter.Take(ratelimit.BucketWebhook) {
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "rate_limited"})
		return
	}

	text := strings.ToLower(strings.TrimSpace(msg.Text))
	switch {
	case strings.HasPrefix(text, "!resumo") || strings.HasPrefix(text, "/resumo"):
		result := s.summarizer.Summarize(r.Context(), msg.ChatID)
		s.writeJSON(w, http.StatusOK, result)

	case strings.HasPrefix(text, "!status") || strings.HasPrefix(text, "/status"):
		s.sendStatus(r.Context(), msg.ChatID)
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		// Not a command, acknowledge without action.
		s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (s *Server) handleSummaryRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chatID := r.URL.Query().Get("chatId")
	if chatID == "" {
		http.Error(w, "chatId is required", http.StatusBadRequest)
		return
	}

	if !s.limiter.Take(ratelimit.BucketSummary) {
		s.writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "rate_limited"})
		return
	}

	result := s.summarizer.Summarize(r.Context(), chatID)
	s.writeJSON(w, http.StatusOK, result)
}

// sendStatus computes the group status and delivers it as chat text.
func (s *Server) sendStatus(ctx context.Context, chatID string) {
	st := s.summarizer.Status(ctx, chatID)

	hasSummary := "não"
	if st.HasSummary {
		hasSummary = "sim"
	}

	s.summarizer.SendText(ctx, chatID, fmt.Sprintf(
		"📊 Status %s\n- Mensagens hoje: %d (normalizadas: %d)\n- Último resumo cobre: %d\n- Provider: %s\n- Tem resumo salvo: %s",
		st.Date, st.MsgsToday, st.MsgsNorm, st.Covered, st.Provider, hasSummary,
	))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}
