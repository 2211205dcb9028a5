// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pmid-pdf/internal/httputil"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

const (
	// DefaultTimeout bounds one crawl. Downloads can be slow.
	DefaultTimeout = 5 * time.Minute

	// DefaultRateLimit is the crawl request rate NCBI tolerates without a key.
	DefaultRateLimit = 3.0

	defaultUserAgent = "pmid-pdf/1.0"
	crawlPath        = "/api/crawl"
)

// HTTPClient is a rate-limited client for the crawler's HTTP API.
type HTTPClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	email      string
	ncbiKey    string
	userAgent  string
	timeout    time.Duration
	maxRetries int
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithAPIKey sets the key sent as X-API-Key to the crawler.
func WithAPIKey(key string) HTTPOption {
	return func(c *HTTPClient) { c.apiKey = key }
}

// WithNCBI sets the identity forwarded to NCBI by the crawler.
func WithNCBI(email, apiKey string) HTTPOption {
	return func(c *HTTPClient) {
		c.email = email
		c.ncbiKey = apiKey
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithTimeout bounds each Fetch.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithRateLimit sets the maximum requests per second.
func WithRateLimit(rps float64) HTTPOption {
	return func(c *HTTPClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithMaxRetries sets the retry budget for throttled responses.
func WithMaxRetries(n int) HTTPOption {
	return func(c *HTTPClient) { c.maxRetries = n }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// NewHTTPClient returns a client for the crawler at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, errors.New("crawler base url is not set")
	}
	c := &HTTPClient{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  defaultUserAgent,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch asks the crawler to download pmid and returns its report. Throttled
// responses are retried; any other non-2xx status is an error.
func (c *HTTPClient) Fetch(ctx context.Context, pmid string) (types.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return types.FetchResult{}, fmt.Errorf("%w: rate limiter: %v", ErrTransport, err)
	}

	body, err := json.Marshal(Request{PMID: pmid, Email: c.email, APIKey: c.ncbiKey})
	if err != nil {
		return types.FetchResult{}, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+crawlPath, bytes.NewReader(body))
	if err != nil {
		return types.FetchResult{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		return types.FetchResult{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return types.FetchResult{}, err
	}
	return decodeResult(resp.Body)
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && !httputil.Retryable(resp.StatusCode) {
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, msg)
	}
	return fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, msg)
}
