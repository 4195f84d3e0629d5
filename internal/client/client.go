// Package client calls the health-check endpoint of a healthbadge-compatible
// service and turns every failure into a *ClientError.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"healthbadge/internal/models"
)

const (
	// BasePath prefixes every API route.
	BasePath = "/api"
	// HealthCheckPath is the health-check route below BasePath.
	HealthCheckPath = "/health-check/"

	maxBodyBytes = 1 << 20
)

// Fetcher retrieves the current health status.
type Fetcher interface {
	FetchHealth(ctx context.Context) (*models.HealthStatus, error)
}

// Client is a Fetcher over HTTP. It keeps no state between calls; each
// FetchHealth issues exactly one request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. A nil hc keeps the
// default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request, including reading the body.
// Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// New returns a client for the service at origin (scheme://host[:port]).
// The origin is not validated here; a malformed origin surfaces as a
// RequestError from FetchHealth.
func New(origin string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(origin, "/") + BasePath,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the origin joined with BasePath.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchHealth performs GET {origin}/api/health-check/ and returns the decoded
// body without validating it.
func (c *Client) FetchHealth(ctx context.Context) (*models.HealthStatus, error) {
	req, err := c.newRequest(ctx)
	if err != nil {
		return nil, NewRequestError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, NewServerError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, NewNetworkError(err)
	}
	if len(body) > maxBodyBytes {
		return nil, NewRequestError(fmt.Errorf("response too large: body exceeds %d bytes", maxBodyBytes))
	}

	status := &models.HealthStatus{}
	if len(body) == 0 {
		return status, nil
	}
	if err := json.Unmarshal(body, status); err != nil {
		return nil, NewRequestError(fmt.Errorf("decode response: %w", err))
	}
	return status, nil
}

func (c *Client) newRequest(ctx context.Context) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + HealthCheckPath)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported protocol scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", c.baseURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
