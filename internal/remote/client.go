// Package remote implements the HTTP client for the Vitrine content API —
// the network-backed store the site can use when it is reachable.
//
// Every call takes its deadline from the caller's context; a hung server
// can never block past that. Failures are classified into three kinds via
// ClassifyError: timeout, network-unreachable, and remote application error.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// Client talks to one content API server. It is safe for concurrent use:
// the REPL updates the token while the status watcher issues requests.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient returns a Client for the API at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// SetToken attaches a bearer token to subsequent mutating requests.
// An empty token detaches it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Ping issues a liveness request against /health. A nil error means the
// remote process is up; it says nothing about its persistence layer.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/health", nil, &out)
}

// List returns all documents of a collection.
func (c *Client) List(ctx context.Context, collection string) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/"+collection, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single document. A 404 is reported as absence, not an error.
func (c *Client) Get(ctx context.Context, collection, id string) (map[string]any, bool, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/api/"+collection+"/"+id, nil, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return out, true, nil
}

// Create posts a new document and returns the stored version.
func (c *Client) Create(ctx context.Context, collection string, doc map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, "/api/"+collection, doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the patchable fields of a document.
func (c *Client) Update(ctx context.Context, collection, id string, doc map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPut, "/api/"+collection+"/"+id, doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a document; a 404 reports false without error.
func (c *Client) Delete(ctx context.Context, collection, id string) (bool, error) {
	err := c.do(ctx, http.MethodDelete, "/api/"+collection+"/"+id, nil, nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &StatusError{Code: resp.StatusCode, Body: fmt.Sprintf("malformed response body: %v", err)}
	}
	return nil
}

// StatusError reports a non-2xx response or a malformed payload from a
// server that was otherwise reachable.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned status %d: %s", e.Code, e.Body)
}
