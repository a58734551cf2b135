package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/hexclash/backend/internal/config"
)

// Client posts recorded match results to an external webhook endpoint
type Client struct {
	httpClient *http.Client
}

// Default is the package-level default client
var Default *Client

// NewClient creates a webhook client, or nil when no endpoint is configured
func NewClient(cfg *config.Config) *Client {
	if cfg == nil || cfg.ResultWebhookURL == "" {
		log.Printf("[NOTIFY] Result webhook not configured - skipping initialization")
		return nil
	}

	timeout := cfg.WebhookTimeout
	if timeout <= 0 {
		timeout = 10
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// SetDefault sets the package-level default client
func SetDefault(c *Client) {
	Default = c
}

// ResultPayload is the JSON body posted for each recorded match
type ResultPayload struct {
	ResultID    int       `json:"result_id"`
	ArenaID     string    `json:"arena_id"`
	BoardWidth  float64   `json:"board_width"`
	BoardHeight float64   `json:"board_height"`
	RosterSize  int       `json:"roster_size"`
	WhitePoints int       `json:"white_points"`
	BlackPoints int       `json:"black_points"`
	Winner      string    `json:"winner"`
	EndReason   string    `json:"end_reason"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
}

// Deliver posts the payload to the given URL. Transport errors and 5xx
// responses are retried with a short backoff; 4xx responses fail at once.
func (c *Client) Deliver(ctx context.Context, url string, payload ResultPayload) error {
	if c == nil {
		return errors.New("notify client not initialized")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < 2 {
				time.Sleep(time.Duration(100+attempt*200) * time.Millisecond)
				continue
			}
			return fmt.Errorf("webhook request failed: %w", err)
		}

		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			log.Printf("[NOTIFY] Delivered result %d (status=%d)", payload.ResultID, resp.StatusCode)
			return nil
		}

		// Retry on 5xx errors
		if resp.StatusCode >= 500 && attempt < 2 {
			lastErr = fmt.Errorf("webhook failed with status %d: %s", resp.StatusCode, string(respBody))
			time.Sleep(time.Duration(100+attempt*200) * time.Millisecond)
			continue
		}

		// 4xx errors - don't retry
		return fmt.Errorf("webhook failed: %d - %s", resp.StatusCode, string(respBody))
	}

	return fmt.Errorf("webhook failed after retries: %w", lastErr)
}
