package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Client talks to the remote order feed API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// ClientConfig holds feed API settings.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a feed API client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// feedEnvelope matches the feed's doubly-nested response body.
type feedEnvelope struct {
	Data struct {
		Data []RawRecord `json:"data"`
	} `json:"data"`
}

// FetchOrders retrieves the flat record list for one business. The business
// is identified by its own Twilio contact number, which is the feed's filter
// key.
func (c *Client) FetchOrders(ctx context.Context, businessNumber string, pageSize int) ([]RawRecord, error) {
	q := url.Values{}
	q.Set("twilio_phone_number", businessNumber)
	q.Set("page_size", strconv.Itoa(pageSize))

	endpoint := fmt.Sprintf("%s/orders?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope feedEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	c.logger.Debug("fetched feed records",
		zap.String("business_number", businessNumber),
		zap.Int("count", len(envelope.Data.Data)),
	)

	return envelope.Data.Data, nil
}

// MarkRead acknowledges one record on the feed API. Callers treat failures
// as best-effort; the read state is a convenience signal, not a ledger.
func (c *Client) MarkRead(ctx context.Context, recordID string) error {
	endpoint := fmt.Sprintf("%s/orders/%s/read", c.baseURL, url.PathEscape(recordID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build mark-read request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mark-read request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mark-read returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
