package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the JSON API of a running service.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Options fetches the questionnaire choices.
func (c *Client) Options(ctx context.Context) (Options, error) {
	var out Options
	err := c.call(ctx, http.MethodGet, "/api/options", nil, http.StatusOK, &out)
	return out, err
}

// Create opens a new session.
func (c *Client) Create(ctx context.Context) (Session, error) {
	var out Session
	err := c.call(ctx, http.MethodPost, "/api/sessions", nil, http.StatusCreated, &out)
	return out, err
}

// Get polls a session.
func (c *Client) Get(ctx context.Context, id string) (Session, error) {
	var out Session
	err := c.call(ctx, http.MethodGet, "/api/sessions/"+id, nil, http.StatusOK, &out)
	return out, err
}

// Start moves a session to the form.
func (c *Client) Start(ctx context.Context, id string) (Session, error) {
	var out Session
	err := c.call(ctx, http.MethodPost, "/api/sessions/"+id+"/start", nil, http.StatusOK, &out)
	return out, err
}

// Submit sends the questionnaire.
func (c *Client) Submit(ctx context.Context, id string, fields any) (Session, error) {
	var out Session
	err := c.call(ctx, http.MethodPost, "/api/sessions/"+id+"/submit", fields, http.StatusAccepted, &out)
	return out, err
}

// Reset returns a session to welcome.
func (c *Client) Reset(ctx context.Context, id string) (Session, error) {
	var out Session
	err := c.call(ctx, http.MethodPost, "/api/sessions/"+id+"/reset", nil, http.StatusOK, &out)
	return out, err
}

// Share fetches the share payload of a finished reading.
func (c *Client) Share(ctx context.Context, id string) (Share, error) {
	var out Share
	err := c.call(ctx, http.MethodGet, "/api/sessions/"+id+"/share", nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) call(ctx context.Context, method, path string, body any, want int, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrUnexpected, method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrUnexpected, method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}
