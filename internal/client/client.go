package client

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

	"betedge/engine/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ErrStatus is matched by every StatusError
var ErrStatus = errors.New("unexpected response status")

// maxErrorBody caps how much of a failed response ends up in an error message
const maxErrorBody = 512

// StatusError is returned when an upstream answers with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("authentication failed (status %d) for %s: %s", e.StatusCode, e.URL, e.Body)
	default:
		return fmt.Sprintf("%s returned status %d: %s", e.URL, e.StatusCode, e.Body)
	}
}

// Is makes errors.Is(err, ErrStatus) match
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// Retryable reports whether the status is worth another attempt
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Options configures a Client
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// RequestDelay is the minimum gap between two outgoing requests
	RequestDelay time.Duration
	UserAgent    string
}

// Client is a small HTTP client shared by every source adapter.
// Requests are paced, retried with exponential backoff and recorded in metrics.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	userAgent  string
}

// NewClient creates a new client
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "BetEdge/1.0"
	}

	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}

	return &Client{
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		userAgent:  opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Get performs a GET request and returns the body of a 2xx response.
// endpoint is a short label used for logs and metrics.
func (c *Client) Get(ctx context.Context, endpoint, rawURL string, params url.Values) ([]byte, error) {
	target, err := withQuery(rawURL, params)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, endpoint, http.MethodGet, target, nil, "")
}

// GetJSON performs a GET request and decodes the JSON body into out
func (c *Client) GetJSON(ctx context.Context, endpoint, rawURL string, params url.Values, out any) error {
	body, err := c.Get(ctx, endpoint, rawURL, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", endpoint, err)
	}
	return nil
}

// PostJSON encodes payload as JSON and posts it to rawURL
func (c *Client) PostJSON(ctx context.Context, endpoint, rawURL string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", endpoint, err)
	}
	_, err = c.do(ctx, endpoint, http.MethodPost, rawURL, data, "application/json")
	return err
}

func (c *Client) do(ctx context.Context, endpoint, method, target string, payload []byte, contentType string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1x, 2x, 4x the retry delay
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.once(ctx, endpoint, method, target, payload, contentType)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, lastErr
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			// Auth failures and other client errors are final
			return nil, err
		}

		if attempt < c.maxRetries {
			log.Warn().
				Err(err).
				Str("endpoint", endpoint).
				Int("attempt", attempt+1).
				Msg("Request failed, will retry")
		}
	}

	return nil, lastErr
}

func (c *Client) once(ctx context.Context, endpoint, method, target string, payload []byte, contentType string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Str("url", redact(target)).
		Msg("Making request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(ue.URL)
		}
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response body: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{URL: redact(target), StatusCode: resp.StatusCode, Body: snippet}
	}

	log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("Request successful")
	return body, nil
}

func withQuery(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// redact hides credentials passed as query parameters
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	changed := false
	for _, key := range []string{"appid", "apikey", "apiKey", "api_key", "key"} {
		if q.Has(key) {
			q.Set(key, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}
