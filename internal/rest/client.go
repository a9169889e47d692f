// Palaver - Social Network API Client and Sync Engine
// Copyright 2026 Palaver Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/palaver-net/palaver

/*
client.go - Core Palaver API Client

This file provides the core Client struct and HTTP communication layer for
the social-network REST API.

Client Features:
  - Token authentication (Authorization: Token <key>)
  - Configurable timeout, client-side rate limiting (golang.org/x/time)
  - Automatic HTTP 429 handling with exponential backoff
  - JSON request/response handling via goccy/go-json
  - Multipart uploads for post media
  - Structured error taxonomy (see errors.go)
  - Context support for cancellation and timeouts

Related Files:
  - client_auth.go: login, register, logout, current member
  - client_members.go: profiles, search, follow edges
  - client_posts.go: feed pages, post CRUD, like toggle
  - client_comments.go: comment CRUD, like toggle
  - client_dialogs.go: dialogs, messages, mark-read
  - breaker.go: circuit-breaker wrapper
*/

package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/palaver-net/palaver/internal/config"
	"github.com/palaver-net/palaver/internal/metrics"
)

// Client handles communication with the Palaver backend REST API.
//
// Thread Safety: safe for concurrent use. The auth token is guarded by a
// mutex so the session manager can swap it while pollers are in flight.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string

	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a new API client from configuration. The base URL is
// normalized to have no trailing slash.
func NewClient(cfg *config.APIConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:        limiter,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// SetToken installs the auth token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the auth token; subsequent requests are anonymous.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the currently installed auth token, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// call performs a JSON API request. op is the logical endpoint group used in
// metrics and error wrapping; body (optional) is JSON-encoded; out (optional)
// receives the decoded response.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.send(ctx, op, method, path, query, reqBody, contentType, out)
}

// send performs the request with rate limiting, 429 backoff, status checking
// and JSON decoding. The request body must be replayable only when retries
// are possible, which holds because bodies are in-memory buffers.
func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var raw []byte
	if body != nil {
		var err error
		raw, err = io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("%s: read request body: %w", op, err)
		}
	}

	start := time.Now()
	resp, err := c.doWithBackoff(ctx, method, reqURL, raw, contentType)
	metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.APIRequestsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("%s: %w", op, newAPIError(resp.StatusCode, resp.Body))
	}

	metrics.APIRequestsTotal.WithLabelValues(op, "success").Inc()

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// doWithBackoff issues the request, retrying on HTTP 429 with exponential
// backoff (base delay doubling per attempt, Retry-After honored).
func (c *Client) doWithBackoff(ctx context.Context, method, reqURL string, body []byte, contentType string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var reqBody io.Reader = http.NoBody
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Rate limited. Close and retry with backoff.
		_ = resp.Body.Close()
		metrics.APIRateLimitRetries.Inc()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// MediaFile is one file part of a multipart post upload.
type MediaFile struct {
	// Name is the filename reported to the backend.
	Name string

	// Reader supplies the file content. Consumed once.
	Reader io.Reader
}

// sendMultipart encodes text fields plus media file parts and performs the
// request. Multipart bodies are buffered in memory, so a 429 retry can
// replay them.
func (c *Client) sendMultipart(ctx context.Context, op, method, path string, fields map[string]string, files []MediaFile, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("%s: write field %s: %w", op, name, err)
		}
	}

	for _, file := range files {
		part, err := writer.CreateFormFile("media", file.Name)
		if err != nil {
			return fmt.Errorf("%s: create media part: %w", op, err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return fmt.Errorf("%s: copy media %s: %w", op, file.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: finalize multipart body: %w", op, err)
	}

	return c.send(ctx, op, method, path, nil, &buf, writer.FormDataContentType(), out)
}
