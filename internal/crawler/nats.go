// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pdiddy/pmid-pdf/pkg/types"
)

// NATSClient sends crawl requests over NATS request/reply.
type NATSClient struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
	ncbi    types.NCBIConfig
}

// DialNATS connects to url and returns a client publishing on subject.
func DialNATS(url, subject string, timeout time.Duration, ncbi types.NCBIConfig) (*NATSClient, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("pmid-pdf"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return NewNATSClient(nc, subject, timeout, ncbi), nil
}

// NewNATSClient wraps an existing connection.
func NewNATSClient(nc *nats.Conn, subject string, timeout time.Duration, ncbi types.NCBIConfig) *NATSClient {
	if subject == "" {
		subject = DefaultSubject
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &NATSClient{nc: nc, subject: subject, timeout: timeout, ncbi: ncbi}
}

// Fetch publishes a crawl request and waits for the crawler's reply.
func (c *NATSClient) Fetch(ctx context.Context, pmid string) (types.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := json.Marshal(Request{PMID: pmid, Email: c.ncbi.Email, APIKey: c.ncbi.APIKey})
	if err != nil {
		return types.FetchResult{}, fmt.Errorf("encoding request: %w", err)
	}

	msg, err := c.nc.RequestWithContext(ctx, c.subject, data)
	if errors.Is(err, nats.ErrNoResponders) {
		return types.FetchResult{}, fmt.Errorf("%w: no crawler listening on %s", ErrTransport, c.subject)
	}
	if err != nil {
		return types.FetchResult{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return decodeResult(bytes.NewReader(msg.Data))
}

// Close drains the connection.
func (c *NATSClient) Close() error {
	return c.nc.Drain()
}
