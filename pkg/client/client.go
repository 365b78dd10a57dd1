// Package client is the data-access module for the notes API.
//
// Every call returns a [Response] carrying the HTTP status and, for 2xx
// replies, the decoded payload. Status codes are never turned into errors:
// callers decide what a 404 or 422 means for them. An error is returned only
// when the request could not be built, sent or decoded.
//
// Basic usage:
//
//	c := client.New("http://localhost:3000")
//	if _, err := c.Login(ctx, "me@example.com", "secret"); err != nil {
//		return err
//	}
//	res, err := c.GetNotes(ctx)
//	if err != nil {
//		return err // transport failure
//	}
//	if res.Status == http.StatusOK {
//		for _, n := range *res.Data { ... }
//	}
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

var (
	// ErrMissingNoteID is returned by UpdateNote before any request is made.
	ErrMissingNoteID = errors.New("client: note has no id")
	ErrNilNote       = errors.New("client: note is nil")
)

// Response is the outcome of a call that reached the server.
type Response[T any] struct {
	Status int
	// Data is set for 2xx replies with a body.
	Data *T
	// Body is the raw reply, e.g. the validation messages of a 422.
	Body []byte
}

// OK reports whether the status is 2xx.
func (r *Response[T]) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Errors decodes a 422 body into field messages. Other statuses return nil.
func (r *Response[T]) Errors() map[string][]string {
	if r.Status != http.StatusUnprocessableEntity {
		return nil
	}
	var fields map[string][]string
	if err := json.Unmarshal(r.Body, &fields); err != nil {
		return nil
	}
	return fields
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	apiPrefix  string
	httpClient *http.Client

	mu        sync.RWMutex
	authToken string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client. Timeouts are the caller's
// business; the default client has none beyond the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

func WithAPIPrefix(prefix string) Option {
	return func(c *Client) { c.apiPrefix = "/" + strings.Trim(prefix, "/") }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiPrefix:  "/api",
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAuthToken sets the bearer token sent with every request.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// doRequest performs an HTTP request and reads the whole body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+c.apiPrefix+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.AuthToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// call sends the request and decodes a 2xx body straight into T.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (*Response[T], error) {
	status, raw, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	res := &Response[T]{Status: status, Body: raw}
	if res.OK() && len(bytes.TrimSpace(raw)) > 0 {
		var data T
		if err := json.Unmarshal(raw, &data); err != nil {
			return res, fmt.Errorf("failed to decode response: %w", err)
		}
		res.Data = &data
	}
	return res, nil
}

// envelope is how the auth endpoints wrap their payload.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

func callEnvelope[T any](ctx context.Context, c *Client, method, path string, body any) (*Response[T], error) {
	wrapped, err := call[envelope[T]](ctx, c, method, path, body)
	if err != nil {
		if wrapped == nil {
			return nil, err
		}
		return &Response[T]{Status: wrapped.Status, Body: wrapped.Body}, err
	}

	res := &Response[T]{Status: wrapped.Status, Body: wrapped.Body}
	if wrapped.Data != nil {
		res.Data = wrapped.Data.Data
	}
	return res, nil
}
