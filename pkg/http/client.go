package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultClientTimeout = 30 * time.Second

// Client is a small JSON-over-HTTP client used to talk to the model
// service. Request bodies are marshaled to JSON and non-2xx responses
// are surfaced as errors carrying the response text.
type Client struct {
	http *http.Client
}

type ClientOption func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = timeout }
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http: &http.Client{Timeout: defaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON posts payload to url and decodes the JSON response into dest.
// A nil payload sends an empty body; a nil dest discards the response.
func (c *Client) PostJSON(ctx context.Context, url string, payload interface{}, dest interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(text))
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
