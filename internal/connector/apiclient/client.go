// Package apiclient is the HTTP JSON client shared by connectors that talk to official platform APIs.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"time"
)

const maxErrorBody = 4 << 10

type Config struct {
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	UserAgent      string
}

// StatusError is a non-2xx response. Body holds the start of the response body.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

type Client struct {
	httpClient     *http.Client
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	userAgent      string
	logger         *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ContentFetcher/1.0"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		userAgent:      cfg.UserAgent,
		logger:         logger,
	}
}

// GetJSON fetches url and decodes the body into out, retrying network
// failures, 429 and 5xx responses with exponential backoff.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.doRequest(ctx, url, out)
		if err == nil {
			return nil
		}

		if se, ok := err.(*StatusError); ok && !se.retryable() {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
}

func (c *Client) doRequest(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Drop the URL: API tokens travel in the path or query.
		var urlErr *neturl.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: body}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}
