package smoke

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the activities API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Healthz checks that the metrics endpoint answers 200.
func (c *Client) Healthz(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: /healthz status %d", ErrUnhealthy, status)
	}
	return nil
}

// List returns every activity.
func (c *Client) List(ctx context.Context) (map[string]Activity, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/activities")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: GET /activities status %d", ErrUnexpected, status)
	}
	var out map[string]Activity
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return out, nil
}

// Get returns a single activity.
func (c *Client) Get(ctx context.Context, name string) (Activity, error) {
	var a Activity
	status, body, err := c.do(ctx, http.MethodGet, "/activities/"+url.PathEscape(name))
	if err != nil {
		return a, err
	}
	if status != http.StatusOK {
		return a, fmt.Errorf("%w: GET activity %q status %d", ErrUnexpected, name, status)
	}
	if err := json.Unmarshal(body, &a); err != nil {
		return a, fmt.Errorf("decode activity: %w", err)
	}
	return a, nil
}

// Signup posts a sign-up and returns the status and error code, if any.
func (c *Client) Signup(ctx context.Context, name, email string) (int, string, error) {
	return c.roster(ctx, http.MethodPost, name, email)
}

// Unregister deletes a sign-up and returns the status and error code, if any.
func (c *Client) Unregister(ctx context.Context, name, email string) (int, string, error) {
	return c.roster(ctx, http.MethodDelete, name, email)
}

func (c *Client) roster(ctx context.Context, method, name, email string) (int, string, error) {
	path := "/activities/" + url.PathEscape(name) + "/signup?email=" + url.QueryEscape(email)
	status, body, err := c.do(ctx, method, path)
	if err != nil {
		return 0, "", err
	}
	if status == http.StatusOK {
		return status, "", nil
	}
	var e apiError
	_ = json.Unmarshal(body, &e)
	return status, e.Code, nil
}

func (c *Client) do(ctx context.Context, method, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}
