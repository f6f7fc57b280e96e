package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// MaxRetries is the maximum number of retry attempts for rate-limited requests
	MaxRetries = 3

	// DefaultBackoff is the initial backoff duration for exponential backoff
	DefaultBackoff = 1 * time.Second
)

// HTTPClient wraps http.Client with authentication and retry logic
// Automatically injects:
// - Authorization: Bearer <token> (production) OR X-Debug-Sub (dev mode)
// - X-Correlation-ID: <uuid>
//
// 429 Too Many Requests is retried with Retry-After or exponential backoff.
// Every other status is returned to the caller for interpretation.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
	debugSub   string
	backoff    time.Duration
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithToken authenticates with a bearer token
func WithToken(token string) Option {
	return func(c *HTTPClient) { c.token = token }
}

// WithDebugSub authenticates with the dev-mode X-Debug-Sub header.
// Ignored when a token is configured.
func WithDebugSub(sub string) Option {
	return func(c *HTTPClient) { c.debugSub = sub }
}

// WithBackoff overrides the initial rate-limit backoff
func WithBackoff(d time.Duration) Option {
	return func(c *HTTPClient) { c.backoff = d }
}

// NewHTTPClient creates a new authenticated HTTP client
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes an HTTP request with auto-injection of auth headers and retry logic
func (c *HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	correlationID := uuid.New().String()

	logger := log.With().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("correlationId", correlationID).
		Logger()

	return c.doWithRetry(ctx, req, &logger, correlationID, 0)
}

func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request, logger *zerolog.Logger, correlationID string, retryCount int) (*http.Response, error) {
	reqClone, err := cloneRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to clone request: %w", err)
	}

	reqClone.Header.Set("X-Correlation-ID", correlationID)

	if c.token != "" {
		reqClone.Header.Set("Authorization", "Bearer "+c.token)
	} else if c.debugSub != "" {
		reqClone.Header.Set("X-Debug-Sub", c.debugSub)
		logger.Debug().Str("debugSub", c.debugSub).Msg("using dev mode auth (X-Debug-Sub)")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(reqClone)
	duration := time.Since(start)

	if err != nil {
		// the caller gave up; that is not a transport failure
		if ctxErr := ctx.Err(); ctxErr != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			logger.Debug().Err(err).Dur("duration", duration).Msg("HTTP request abandoned")
			return nil, ctxErr
		}
		logger.Error().Err(err).Dur("duration", duration).Msg("HTTP request failed")
		return nil, ErrNetwork{Err: err}
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Int("retryCount", retryCount).
		Msg("HTTP request completed")

	if resp.StatusCode == http.StatusTooManyRequests {
		return c.handleRateLimit(ctx, req, resp, logger, correlationID, retryCount)
	}
	return resp, nil
}

// handleRateLimit handles 429 Too Many Requests with exponential backoff
func (c *HTTPClient) handleRateLimit(ctx context.Context, req *http.Request, resp *http.Response, logger *zerolog.Logger, correlationID string, retryCount int) (*http.Response, error) {
	resp.Body.Close()

	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))

	if retryCount >= MaxRetries {
		logger.Warn().Msg("Rate limited - max retries exceeded")
		return nil, ErrRateLimited{RetryAfter: int(retryAfter.Seconds())}
	}

	if retryAfter == 0 {
		retryAfter = c.backoff * time.Duration(1<<retryCount)
	}

	logger.Warn().
		Dur("retryAfter", retryAfter).
		Int("retryCount", retryCount).
		Str("rateLimitRemaining", resp.Header.Get("X-RateLimit-Remaining")).
		Msg("Rate limited - backing off")

	select {
	case <-time.After(retryAfter):
		return c.doWithRetry(ctx, req, logger, correlationID, retryCount+1)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// cloneRequest creates a copy of an HTTP request for retry
// Preserves the request body by reading and restoring it
func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	reqClone, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}

	for k, v := range req.Header {
		if k == "Authorization" || k == "X-Debug-Sub" {
			continue
		}
		reqClone.Header[k] = v
	}

	return reqClone, nil
}

// parseRetryAfter parses the Retry-After header
// Supports both integer seconds and HTTP-date format
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(value); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}
