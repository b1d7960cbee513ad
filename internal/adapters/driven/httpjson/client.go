// Package httpjson is the small JSON-over-HTTP client shared by the model
// provider adapters that talk to REST APIs directly (Ollama, OpenAI).
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 4 << 10

// Client sends JSON requests relative to a base URL.
type Client struct {
	vendor  string
	baseURL string
	http    *http.Client
	header  http.Header
	message func(body []byte) string
}

// Option customises a Client.
type Option func(*Client)

// WithBearer authenticates every request with an Authorization bearer token.
func WithBearer(token string) Option {
	return func(c *Client) {
		c.header.Set("Authorization", "Bearer "+token)
	}
}

// WithErrorMessage extracts a readable message from a failed response body.
// When fn returns "" the raw body is used.
func WithErrorMessage(fn func(body []byte) string) Option {
	return func(c *Client) {
		c.message = fn
	}
}

// New creates a client for vendor ("ollama", "openai"), which prefixes errors.
func New(vendor, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		vendor:  vendor,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is a non-2xx response. SDK-based adapters use it too, through
// WrapStatus, so callers can classify failures by status alone.
type StatusError struct {
	Vendor  string
	Status  int
	Message string

	// Err is the SDK error the status was taken from, if any.
	Err error
}

var _ driven.HTTPStatusError = (*StatusError)(nil)

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Vendor, e.Status, msg)
}

func (e *StatusError) Unwrap() error { return e.Err }

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.Status }

// WrapStatus attaches an HTTP status to an SDK error.
func WrapStatus(vendor string, status int, err error) error {
	return &StatusError{Vendor: vendor, Status: status, Err: err}
}

// Post sends in as JSON to path and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.vendor, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.vendor, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Get fetches path. A nil out discards the body, which suits health checks.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.vendor, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	for k, v := range c.header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send request: %w", c.vendor, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.vendor, err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &StatusError{Vendor: c.vendor, Status: resp.StatusCode, Message: "unreadable response body"}
	}
	msg := ""
	if c.message != nil {
		msg = c.message(body)
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	return &StatusError{Vendor: c.vendor, Status: resp.StatusCode, Message: msg}
}

// Float32s converts a JSON-decoded vector.
func Float32s(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
