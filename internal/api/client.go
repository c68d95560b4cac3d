// Package api is the gateway to the remote CarMate REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenHeader is the header the backend reads the session token from.
const TokenHeader = "token"

// TokenSource supplies the current session token; an empty string means signed out.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) string

func (f TokenFunc) Token(ctx context.Context) string { return f(ctx) }

// Request describes one backend call. Body is JSON-encoded unless Multipart is set.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Multipart *Multipart
}

// Result is the decoded success envelope {status, data, count}.
type Result struct {
	StatusCode int
	Status     string
	Message    string
	Count      int
	Data       json.RawMessage
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	bulkSize       int
	logger         *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUnauthorizedHook registers the interceptor run whenever the backend
// answers 401, before the error is returned to the caller.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithBulkSize sets the page size requested by bulk list calls.
func WithBulkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bulkSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		tokens:   tokens,
		bulkSize: 1000,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs req. Any non-2xx answer or transport failure comes back as *Error;
// nothing is retried.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("Backend request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, &Error{Err: err}
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			c.logger.Debug("Failed to close response body", "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug("Backend request",
		"method", req.Method,
		"path", req.Path,
		"status", res.StatusCode,
		"duration", time.Since(start),
	)

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && res.StatusCode < 300 {
			return nil, &Error{StatusCode: res.StatusCode, Message: "unexpected response from server", Err: err}
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &Error{StatusCode: res.StatusCode, Message: env.Message}
		if apiErr.Message == "" {
			apiErr.Message = env.Error
		}
		if res.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return nil, apiErr
	}

	return &Result{
		StatusCode: res.StatusCode,
		Status:     env.Status,
		Message:    env.Message,
		Count:      env.Count,
		Data:       env.Data,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Multipart != nil:
		buf, ct, err := req.Multipart.encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart: %w", err)
		}
		body, contentType = buf, ct
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			httpReq.Header.Set(TokenHeader, token)
		}
	}
	return httpReq, nil
}

// decode unmarshals the envelope's data into dst.
func decode(res *Result, dst any) error {
	if len(res.Data) == 0 || string(res.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(res.Data, dst); err != nil {
		return &Error{StatusCode: res.StatusCode, Message: "unexpected response from server", Err: err}
	}
	return nil
}

// expectStatus turns a 2xx answer without the expected status string into an error.
func expectStatus(res *Result, want string) error {
	if strings.EqualFold(res.Status, want) {
		return nil
	}
	msg := res.Message
	if msg == "" {
		msg = res.Status
	}
	if msg == "" {
		msg = "unexpected response from server"
	}
	return &Error{StatusCode: res.StatusCode, Message: msg}
}
