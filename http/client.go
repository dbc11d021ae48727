// Package http provides an HTTP implementation of the bookchat backend
// services: question answering, selection-scoped questions and health checks.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/bookchat"
	"github.com/google/uuid"
)

// Backend paths, appended to the configured base URL.
const (
	AskPath              = "/ask"
	AskFromSelectionPath = "/ask-from-selection"
	HealthPath           = "/health"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Ensure Client implements the bookchat service interfaces at compile time.
var (
	_ bookchat.Asker          = (*Client)(nil)
	_ bookchat.SelectionAsker = (*Client)(nil)
	_ bookchat.HealthChecker  = (*Client)(nil)
)

// Client talks to the Q&A backend over HTTP.
// Requests are never retried. There is no timeout unless WithTimeout is used.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets an overall timeout for each request.
// Zero, the default, means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a new Client for the backend at baseURL.
// A reverse-proxied backend is addressed by including the proxy prefix in
// baseURL, e.g. "https://docs.example.com/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = &http.Client{}
	}
	if c.timeout > 0 {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}

	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ask posts a question to the backend's ask endpoint.
func (c *Client) Ask(ctx context.Context, q *bookchat.Question) (*bookchat.Answer, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.postAnswer(ctx, AskPath, q)
}

// AskFromSelection posts a question about a selected passage.
func (c *Client) AskFromSelection(ctx context.Context, q *bookchat.SelectionQuestion) (*bookchat.Answer, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.postAnswer(ctx, AskFromSelectionPath, q)
}

// Health retrieves the backend's health status.
func (c *Client) Health(ctx context.Context) (*bookchat.Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return nil, bookchat.Errorf(bookchat.EINVALID, "invalid backend URL %q: %v", c.baseURL, err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var h bookchat.Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, bookchat.Errorf(bookchat.EPARSE, "invalid health response: %v", err)
	}
	return &h, nil
}

func (c *Client) postAnswer(ctx context.Context, path string, payload any) (*bookchat.Answer, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, bookchat.Errorf(bookchat.EINVALID, "invalid backend URL %q: %v", c.baseURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeAnswer(body)
}

// do sends the request and returns the body of a 2xx response.
// The body of a failed response is not read.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, bookchat.Errorf(bookchat.ENETWORK, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, bookchat.Errorf(bookchat.EHTTP, "API error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, bookchat.Errorf(bookchat.ENETWORK, "read response: %v", err)
	}
	return body, nil
}

// decodeAnswer parses an answer body. The answer field is required; a
// missing confidence score stays nil.
func decodeAnswer(body []byte) (*bookchat.Answer, error) {
	var raw struct {
		ID              string            `json:"id"`
		Answer          *string           `json:"answer"`
		SourceCitations []bookchat.Source `json:"source_citations"`
		ConfidenceScore *float64          `json:"confidence_score"`
		CreatedAt       string            `json:"created_at"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, bookchat.Errorf(bookchat.EPARSE, "invalid response: %v", err)
	}
	if raw.Answer == nil {
		return nil, bookchat.Errorf(bookchat.EPARSE, "invalid response: missing answer")
	}

	sources := raw.SourceCitations
	if sources == nil {
		sources = []bookchat.Source{}
	}

	return &bookchat.Answer{
		ID:              raw.ID,
		Answer:          *raw.Answer,
		SourceCitations: sources,
		ConfidenceScore: raw.ConfidenceScore,
		CreatedAt:       raw.CreatedAt,
	}, nil
}
