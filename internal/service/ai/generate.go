package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	generatePath             = "/v1/chat/completions"
	defaultGenerateMaxTokens = 512
	defaultSystemPrompt      = "You are a helpful assistant."
)

// GenerateOptions tune GenerateText.
type GenerateOptions struct {
	Model       string   `json:"model,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	System      string   `json:"system,omitempty"`
}

// GenerateText runs a single system+user exchange against the fixed chat-completions path.
func (c *Client) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (json.RawMessage, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: missing prompt", ErrInvalidRequest)
	}

	model := opts.Model
	if model == "" {
		model = c.model
	}
	system := opts.System
	if system == "" {
		system = defaultSystemPrompt
	}

	resp, err := c.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   valueOr(opts.MaxTokens, defaultGenerateMaxTokens),
		Temperature: float32(valueOr(opts.Temperature, defaultTemperature)),
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	encoded, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode generate response: %w", err)
	}
	return encoded, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		body, _ := json.Marshal(map[string]any{"error": apiErr})
		return &UpstreamError{Path: generatePath, Status: apiErr.HTTPStatusCode, Body: body}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body, _ := json.Marshal(reqErr.Error())
		return &UpstreamError{Path: generatePath, Status: reqErr.HTTPStatusCode, Body: body}
	}

	return &NetworkError{Path: generatePath, Err: err}
}
