// Package api is the HTTP client for the sentiment dashboard backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 4 << 20
	snippetBytes     = 200
)

// Client handles HTTP communication with the dashboard server.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	limiter *rate.Limiter
	log     *zap.Logger
}

// Options configures a Client. Zero values fall back to defaults: a 30s
// timeout and no rate limit.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 for unlimited
	Burst     int
	Logger    *zap.Logger
}

// APIError is a non-2xx response whose body is not a JSON envelope.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API error (%d): %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error (%d)", e.StatusCode)
}

// NewClient creates a Client from options.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	burst := opts.Burst
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
	}

	return &Client{
		BaseURL: strings.TrimRight(opts.BaseURL, "/"),
		Token:   opts.Token,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		log:     logger,
	}
}

// NewClientWithURL creates an unauthenticated Client with default settings.
func NewClientWithURL(serverURL string) *Client {
	return NewClient(Options{BaseURL: serverURL})
}

// send issues a request with the common headers and returns the response.
// The caller owns the response body.
func (c *Client) send(ctx context.Context, method, target string, body io.Reader, header http.Header) (*http.Response, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range header {
		req.Header[k] = v
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, requestID, fmt.Errorf("request to %s failed: %w", target, err)
	}

	c.log.Debug("request complete",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))
	return resp, requestID, nil
}

// do sends a request and decodes the JSON body into result. A non-2xx
// response that still carries an envelope (a "status" field) is decoded
// like a 2xx one, since the server reports application errors that way.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, result interface{}) error {
	target := c.BaseURL + path

	header := http.Header{}
	header.Set("Accept", "application/json")
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	resp, requestID, err := c.send(ctx, method, target, body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		var probe struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(respBody, &probe); err != nil || probe.Status == "" {
			return newAPIError(resp.StatusCode, respBody)
		}
		c.log.Info("server reported failure",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}
	detail := strings.TrimSpace(string(body))
	if len(detail) > snippetBytes {
		detail = detail[:snippetBytes] + "..."
	}
	apiErr.Detail = detail
	return apiErr
}
