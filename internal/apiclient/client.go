// Package apiclient talks to the external admin REST API.
//
// Client builds every outgoing request in one place so the bearer token and
// JSON headers are attached uniformly. Fetcher and Mutator layer request
// state on top: a Fetcher tracks one GET and cancels it when superseded, a
// Mutator runs POST/PUT/PATCH/DELETE calls and records their outcome.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/admindash/internal/metrics"
)

// maxBodySize bounds how much of an upstream response is read.
const maxBodySize = 10 << 20

// TokenSource supplies the bearer token for a request. An empty token
// omits the Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Options are per-request settings, the equivalent of fetch options.
type Options struct {
	Headers map[string]string `json:"headers,omitempty"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	metrics *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// WithMetrics records upstream calls in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTokenSource sets the default token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates with ts. Each dashboard
// session gets its own copy bound to that session's token.
func (c *Client) WithToken(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// BaseURL returns the API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resolves a path against the base URL. Absolute URLs pass through.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// NewRequest builds a request with the JSON and authorization headers every
// upstream call carries. Headers in opts are applied last and win.
func (c *Client) NewRequest(ctx context.Context, method, url string, body io.Reader, opts Options) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(url), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Do sends req and records the outcome. The caller closes the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)

	route := RouteTemplate(req.URL.Path)
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		c.metrics.ObserveUpstream(req.Method, route, "canceled", elapsed)
	case err != nil:
		c.metrics.ObserveUpstream(req.Method, route, "network_error", elapsed)
	default:
		c.metrics.ObserveUpstream(req.Method, route, metrics.StatusClass(resp.StatusCode), elapsed)
	}

	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	return resp, nil
}

// GetRaw issues a GET and returns the body of a 2xx response. Non-2xx
// statuses yield a *RequestError.
func (c *Client) GetRaw(ctx context.Context, url string, opts Options) ([]byte, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, url, nil, opts)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &RequestError{Status: resp.StatusCode, StatusText: statusText(resp), URL: url}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

// RouteTemplate replaces the record id of an admin API path with {id} so
// metrics are labelled per route rather than per record:
// /api/admin/users/7/role becomes /api/admin/users/{id}/role.
func RouteTemplate(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/admin/")
	if !ok {
		return "other"
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) > 1 && parts[1] != "" {
		parts[1] = "{id}"
	}
	return "/api/admin/" + strings.Join(parts, "/")
}
