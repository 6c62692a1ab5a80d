// Package hubspot implements a small client for the HubSpot CRM v3/v4 REST
// API, covering the operations the console proxies: object CRUD, batch
// creation, search, associations, owners, pipelines, properties, and
// engagements.
//
// Design goals:
//
//   - Keep a tiny, explicit API; every operation takes a context.
//   - Authenticate with a private-app bearer token attached per request.
//   - Surface failures as *APIError with the raw response body preserved,
//     because the bulk importer inspects validation bodies to find the one
//     property HubSpot rejected.
//   - Optional retry with exponential backoff on transient failures (5xx,
//     429, network errors). Retries default to off: the importer owns
//     recovery for create calls and must see batch failures immediately.
//   - Be easy to test by injecting a custom RoundTripper and sleep function.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public HubSpot API origin.
const DefaultBaseURL = "https://api.hubapi.com"

// Config configures the client.
//
// Zero values are given sensible defaults:
//   - BaseURL:        DefaultBaseURL
//   - Timeout:        30s
//   - MaxRetries:     0 (only the initial attempt)
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
type Config struct {
	// Token is the private-app access token sent as a bearer credential.
	Token string

	// BaseURL overrides the API origin, mainly for tests.
	BaseURL string

	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the initial request.
	// Keep this at 0 for clients used by the bulk importer: its batch-to-
	// single fallback assumes batch failures are reported immediately.
	MaxRetries int

	// InitialBackoff is the base backoff for the first retry; each retry
	// doubles it up to MaxBackoff.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff duration.
	MaxBackoff time.Duration

	// Transport is an optional custom RoundTripper for tests.
	Transport http.RoundTripper
}

// Client talks to the HubSpot REST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// sleep is injectable to make tests fast and deterministic.
	sleep func(time.Duration)
}

// New constructs a Client from Config, applying defaults for zero values.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.Transport != nil {
		hc.Transport = cfg.Transport
	}
	return &Client{
		httpClient:     hc,
		baseURL:        cfg.BaseURL,
		token:          cfg.Token,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		sleep:          time.Sleep,
	}
}

// do sends one API request and returns the raw response body. payload, when
// non-nil, is JSON-encoded. Transient failures are retried per the client's
// backoff settings; terminal failures come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("hubspot: encode request: %w", err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		// Respect context cancellation before each attempt.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("hubspot: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network or transport-level error. Treat as retryable.
			lastErr = &APIError{Kind: KindNetwork, Message: err.Error()}
		} else {
			data, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = &APIError{Kind: KindNetwork, Message: readErr.Error()}
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return data, nil
			} else {
				apiErr := newAPIError(resp.StatusCode, data)
				if !isRetryableStatus(resp.StatusCode) {
					return nil, apiErr
				}
				lastErr = apiErr
			}
		}

		if attempt+1 >= attempts {
			return nil, lastErr
		}
		if err := sleepWithContext(ctx, c.sleep, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// isRetryableStatus reports whether the status should trigger a retry.
// 5xx and 429 are treated as transient; everything else is final.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// backoffDuration returns the exponential backoff for the given 0-based
// retry index, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial
	if attempt > 0 {
		d = initial << attempt
	}
	if d > max {
		return max
	}
	return d
}

// sleepWithContext waits for d using the injected sleep function, aborting
// early if ctx is canceled.
func sleepWithContext(ctx context.Context, sleep func(time.Duration), d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		// Injected sleep keeps behavior uniform in tests; for most callers
		// this is time.Sleep and the timer has already waited.
		sleep(0)
		return nil
	}
}
