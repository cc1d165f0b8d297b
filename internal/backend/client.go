// Package backend is the typed client for the persistence collaborator: a
// REST service owning products, suppliers, incomes and outcomes. Every
// response wraps its payload in a `data` envelope; any transport failure or
// non-2xx status is an error.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound indicates the collaborator has no record for the id.
var ErrNotFound = errors.New("backend: record not found")

// StatusError reports a non-2xx response.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: %s returned status %d", e.Path, e.Status)
}

// Client wraps HTTP access to the collaborator.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client. Request timeouts are the transport's
// responsibility, so the default is generous.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// get issues a GET and decodes the data envelope into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// send issues a request with a JSON body and decodes the data envelope.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Path: path}
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("backend: decode envelope: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("backend: decode payload: %w", err)
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}
