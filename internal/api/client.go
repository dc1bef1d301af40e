// Package api implements the telemetry transport: a single request
// primitive against the versioned tradedeck HTTP API with uniform error
// normalization. Retry policy does not live here; the poll orchestrator
// skips ticks and the command dispatcher never retries destructive calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// BasePath is the versioned prefix all observability endpoints live under.
const BasePath = "/api/v1/observe"

// ClientConfig holds configuration for the API client.
type ClientConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
}

// Client is the HTTP client for the tradedeck backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a new API client. The underlying http.Client reuses
// connections across the 2s poll cadence.
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &Client{
		baseURL: cfg.BaseURL + BasePath,
		token:   cfg.AuthToken,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// Do issues one request against the backend. body (may be nil) is JSON
// encoded; on 2xx the response is decoded into out (may be nil). Failures
// are normalized into *NetworkError or *ServerError.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("API call failed")
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &NetworkError{Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API call completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return normalizeServerError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
