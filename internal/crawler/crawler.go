// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawler talks to the external PDF crawler. The crawler downloads
// an article into a directory under the shared PDF root and reports that
// directory back; how it finds the PDF is its own business.
//
// Two transports are provided: HTTP (POST {base}/api/crawl) and NATS
// request/reply. Both send the same JSON request and expect the same reply.
package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/pmid-pdf/pkg/types"
)

var (
	// ErrTransport covers network failures, timeouts, server errors and
	// undecodable replies.
	ErrTransport = errors.New("crawler transport error")

	// ErrRejected means the crawler refused the request (bad credentials or
	// a malformed PMID).
	ErrRejected = errors.New("crawler rejected request")
)

// DefaultSubject is the NATS subject the crawler listens on.
const DefaultSubject = "pubcrawler.fetch"

// Request is the payload sent to the crawler.
type Request struct {
	PMID   string `json:"pmid"`
	Email  string `json:"email,omitempty"`
	APIKey string `json:"api_key,omitempty"`
}

// Client is a crawler transport that can be shut down.
type Client interface {
	Fetch(ctx context.Context, pmid string) (types.FetchResult, error)
	Close() error
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*NATSClient)(nil)
)

// New returns the client selected by cfg.Transport, identifying requests
// with the NCBI credentials in ncbi.
func New(cfg types.CrawlerConfig, ncbi types.NCBIConfig) (Client, error) {
	switch cfg.Transport {
	case types.TransportHTTP, "":
		opts := []HTTPOption{
			WithAPIKey(cfg.APIKey),
			WithNCBI(ncbi.Email, ncbi.APIKey),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.RequestsPerSecond > 0 {
			opts = append(opts, WithRateLimit(cfg.RequestsPerSecond))
		}
		if cfg.MaxRetries > 0 {
			opts = append(opts, WithMaxRetries(cfg.MaxRetries))
		}
		if cfg.UserAgent != "" {
			opts = append(opts, WithUserAgent(cfg.UserAgent))
		}
		return NewHTTPClient(cfg.BaseURL, opts...)
	case types.TransportNATS:
		return DialNATS(cfg.NATSURL, cfg.Subject, cfg.Timeout, ncbi)
	default:
		return nil, fmt.Errorf("unknown crawler transport %q", cfg.Transport)
	}
}

// decodeResult parses a crawler reply.
func decodeResult(r io.Reader) (types.FetchResult, error) {
	var res types.FetchResult
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return types.FetchResult{}, fmt.Errorf("%w: decoding reply: %v", ErrTransport, err)
	}
	return res, nil
}
