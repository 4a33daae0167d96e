package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"chatd/pkg/types"
)

// DefaultHost is where a locally started daemon listens.
const DefaultHost = "127.0.0.1:8080"

// APIError is a non-2xx response decoded from the daemon's error envelope.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Message)
}

// Client is a thin HTTP client for the chatd API.
type Client struct {
	base url.URL
	http *http.Client
}

// NewClient builds a client for the given host (host:port, no scheme).
// An empty host targets the local default.
func NewClient(host string) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		base: url.URL{Scheme: "http", Host: host},
		// Generation can take a while on CPU; keep a generous timeout.
		http: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Chat posts the transcript and returns the generated assistant message.
func (c *Client) Chat(ctx context.Context, messages []types.Message, maxTokens int, temperature float64) (types.Message, error) {
	body, err := json.Marshal(types.ChatRequest{
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return types.Message{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.JoinPath("/chat").String(), bytes.NewReader(body))
	if err != nil {
		return types.Message{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Message{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return types.Message{}, decodeAPIError(resp)
	}
	var out types.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.Message{}, fmt.Errorf("decode response: %w", err)
	}
	return types.Message{Role: out.Role, Content: out.Content}, nil
}

// Status fetches the daemon status.
func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var st types.StatusResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.JoinPath("/status").String(), nil)
	if err != nil {
		return st, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return st, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return st, decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	return st, nil
}

// Health probes the daemon root with a short deadline, for the startup
// "is the server even up" check.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.JoinPath("/").String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return decodeAPIError(resp)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var envelope types.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		return &APIError{Code: resp.StatusCode, Message: envelope.Error}
	}
	return &APIError{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
