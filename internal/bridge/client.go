// Package bridge talks to the external messaging bridge: it lists a
// group's messages for the current day and delivers outbound text.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wa-resumo-bot/internal/models"
)

// ErrBackfillNotSupported indicates the bridge cannot serve day history
// (HTTP 501), distinct from generic fetch failures.
var ErrBackfillNotSupported = errors.New("backfill_not_supported")

// Client is an HTTP client for the messaging bridge.
type Client struct {
	baseURL     string
	accessToken string
	timezone    *time.Location
	fetchClient *http.Client
	sendClient  *http.Client
	logger      zerolog.Logger
}

// NewClient creates a bridge client. Fetch and send use separate HTTP
// clients because history queries are allowed a longer deadline than
// outbound sends.
func NewClient(baseURL, accessToken, timezone string, fetchTimeout, sendTimeout int, logger zerolog.Logger) (*Client, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		timezone:    loc,
		fetchClient: &http.Client{Timeout: time.Duration(fetchTimeout) * time.Second},
		sendClient:  &http.Client{Timeout: time.Duration(sendTimeout) * time.Second},
		logger:      logger.With().Str("component", "bridge").Logger(),
	}, nil
}

type fetchResponse struct {
	Items []models.Message `json:"items"`
}

// FetchToday lists the group's messages since local midnight, bounded by
// limit. Returns ErrBackfillNotSupported when the bridge answers 501.
func (c *Client) FetchToday(ctx context.Context, chatID string, limit int) ([]models.Message, error) {
	params := url.Values{}
	params.Set("chatId", chatID)
	params.Set("since", c.midnight().Format(time.RFC3339))
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fetch_today?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}
	c.setAuthHeader(req)

	resp, err := c.fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge fetch_today request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotImplemented {
		return nil, ErrBackfillNotSupported
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read fetch_today response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bridge fetch_today non-success status=%d body=%s", resp.StatusCode, truncate(string(body), 400))
	}

	var parsed fetchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse fetch_today response: %w", err)
	}

	c.logger.Debug().
		Str("chat_id", chatID).
		Int("count", len(parsed.Items)).
		Msg("Fetched today's messages")
	return parsed.Items, nil
}

type sendRequest struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

// Send delivers outbound text to a group. Fire-and-forget: callers log
// failures but do not retry.
func (c *Client) Send(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(sendRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeader(req)

	resp, err := c.sendClient.Do(req)
	if err != nil {
		return fmt.Errorf("bridge send request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.ReadAll(resp.Body) // drain

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bridge send non-success status=%d", resp.StatusCode)
	}

	return nil
}

// midnight returns 00:00 of the current day in the client timezone.
func (c *Client) midnight() time.Time {
	now := time.Now().In(c.timezone)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.timezone)
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.accessToken != "" {
		req.Header.Set("x-access-token", c.accessToken)
	}
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
