// Package transport provides the HTTP client used to talk to sequence
// archives.
package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/agentstation/panmap/pkg/errors"
)

// DefaultUserAgent identifies panmap to remote archives.
const DefaultUserAgent = "panmap (+https://github.com/agentstation/panmap)"

// Client performs HTTP requests with common headers applied. Timeouts are
// carried by the request context, since lookups and multi-gigabyte
// downloads need very different deadlines.
type Client struct {
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client with its own connection pool.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs a GET request and fails on any non-200 response.
// The caller must close the body of a successful response.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// CloseIdleConnections closes pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is maps 404 responses to errors.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == errors.ErrNotFound && e.StatusCode == http.StatusNotFound
}
