// Package client provides an HTTP client for the eventqa server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/raphaelgruber/eventqa/internal/models"
	"github.com/raphaelgruber/eventqa/internal/service"
)

// ErrNotFound is returned when the server has no such event.
var ErrNotFound = errors.New("event not found")

// Client talks to eventqa-server's JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client.
// If baseURL is empty, uses EVENTQA_SERVER_URL or defaults to localhost:8080.
// Timeout can be configured via EVENTQA_CLIENT_TIMEOUT (default 2m for LLM answers).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("EVENTQA_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	timeout := 2 * time.Minute
	if t := os.Getenv("EVENTQA_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// do sends a JSON request and decodes a JSON response into result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return fmt.Errorf("server error: %s - %s", resp.Status, e.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

type chatRequest struct {
	Query string `json:"query"`
}

// Ask sends a question to /api/chat.
func (c *Client) Ask(ctx context.Context, question string) (service.Answer, error) {
	var ans service.Answer
	if err := c.do(ctx, http.MethodPost, "/api/chat", chatRequest{Query: question}, &ans); err != nil {
		return service.Answer{}, err
	}
	return ans, nil
}

// AddEvent stores one event and returns it as the server saved it.
func (c *Client) AddEvent(ctx context.Context, in models.EventInput) (*models.Event, error) {
	var e models.Event
	if err := c.do(ctx, http.MethodPost, "/api/events", in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEvent fetches one event by ID.
func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	if err := c.do(ctx, http.MethodGet, "/api/events/"+url.PathEscape(id), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: %s", resp.Status)
	}
	return nil
}
