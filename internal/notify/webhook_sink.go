package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookSink posts alerts to an operator-facing webhook (typically a chat
// integration).
type WebhookSink struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// WebhookConfig holds webhook sink settings.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// NewWebhookSink creates a webhook-backed sink.
func NewWebhookSink(cfg WebhookConfig, logger *zap.Logger) *WebhookSink {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &WebhookSink{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

// Deliver posts the alert as JSON. Any non-2xx response is a failure.
func (s *WebhookSink) Deliver(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Opsfeed/1.0")
	req.Header.Set("X-Opsfeed-Alert-ID", alert.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	preview, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(preview))
	}

	s.logger.Info("alert delivered via webhook",
		zap.String("alert_id", alert.ID),
		zap.Int("status_code", resp.StatusCode),
	)
	return nil
}
