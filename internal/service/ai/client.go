package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/tanutchapol/backend-ChatBot/internal/config"
)

const defaultTimeout = 30 * time.Second

// Client talks to the Typhon OpenAI-compatible API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	policy  FallbackPolicy
	http    *http.Client
	openai  *openai.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport used for every outbound call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithFallbackPolicy overrides the candidate paths and classifier.
func WithFallbackPolicy(p FallbackPolicy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// NewClient validates the upstream configuration and builds a client.
func NewClient(cfg config.UpstreamConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	apiKey := strings.TrimSpace(cfg.APIKey)
	if baseURL == "" {
		return nil, fmt.Errorf("%w: AITYPHON_BASE_URL is not set", ErrMissingConfiguration)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: AITYPHON_API_KEY is not set", ErrMissingConfiguration)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   cfg.Model,
		policy:  NewFallbackPolicy(cfg.CandidatePaths),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	oaCfg := openai.DefaultConfig(apiKey)
	oaCfg.BaseURL = baseURL + "/v1"
	oaCfg.HTTPClient = c.http
	c.openai = openai.NewClientWithConfig(oaCfg)

	return c, nil
}

// Model returns the configured default model.
func (c *Client) Model() string {
	return c.model
}

// do sends one request and returns the status with the raw body. A nil error means a response arrived.
func (c *Client) do(ctx context.Context, method, target string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// normalizeBody keeps JSON bodies as-is and wraps anything else as a JSON string.
func normalizeBody(data []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	encoded, _ := json.Marshal(string(data))
	return encoded
}
