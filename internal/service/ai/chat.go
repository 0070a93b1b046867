package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/charmbracelet/log"

	"github.com/tanutchapol/backend-ChatBot/internal/model/chat"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
	defaultTopP        = 0.9
)

// Options are the generation parameters a caller may set. Nil means "use the default".
type Options struct {
	Temperature       *float64 `json:"temperature,omitempty"`
	MaxTokens         *int     `json:"max_tokens,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty"`
	Stream            *bool    `json:"stream,omitempty"`
}

// ChatPayload is a chat-completion request before defaults are applied.
type ChatPayload struct {
	Model    string      `json:"model,omitempty"`
	Messages []chat.Turn `json:"messages,omitempty"`
	Prompt   string      `json:"prompt,omitempty"`
	Options
}

// Completion is a successful chat-completion call.
type Completion struct {
	PathUsed string
	Data     json.RawMessage
}

type requestBody struct {
	Model             string      `json:"model"`
	Messages          []chat.Turn `json:"messages"`
	Prompt            string      `json:"prompt,omitempty"`
	Temperature       float64     `json:"temperature"`
	MaxTokens         int         `json:"max_tokens"`
	TopP              float64     `json:"top_p"`
	RepetitionPenalty *float64    `json:"repetition_penalty,omitempty"`
	Stream            bool        `json:"stream"`
}

func (c *Client) buildRequest(p ChatPayload) (requestBody, error) {
	body := requestBody{
		Model:             p.Model,
		Temperature:       valueOr(p.Temperature, defaultTemperature),
		MaxTokens:         valueOr(p.MaxTokens, defaultMaxTokens),
		TopP:              valueOr(p.TopP, defaultTopP),
		RepetitionPenalty: p.RepetitionPenalty,
		Stream:            valueOr(p.Stream, false),
	}
	if body.Model == "" {
		body.Model = c.model
	}

	switch {
	case len(p.Messages) > 0:
		body.Messages = p.Messages
	case p.Prompt != "":
		// Non-chat endpoints read prompt, chat endpoints read messages.
		body.Messages = []chat.Turn{chat.UserTurn(p.Prompt)}
		body.Prompt = p.Prompt
	default:
		return requestBody{}, fmt.Errorf("%w: either messages[] or prompt is required", ErrInvalidRequest)
	}
	return body, nil
}

// ChatCompletions posts the payload to each candidate path in order until one answers 2xx.
func (c *Client) ChatCompletions(ctx context.Context, p ChatPayload) (*Completion, error) {
	body, err := c.buildRequest(p)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode chat payload: %w", err)
	}

	var attempts []Attempt
	for _, path := range c.policy.Paths {
		status, data, err := c.do(ctx, http.MethodPost, c.url(path), encoded)
		if err != nil {
			return nil, &NetworkError{Path: path, Err: err, Attempts: attempts}
		}
		if isSuccess(status) {
			return &Completion{PathUsed: path, Data: normalizeBody(data)}, nil
		}

		attempt := Attempt{Path: path, Status: status, Data: normalizeBody(data)}
		attempts = append(attempts, attempt)

		if c.policy.verdict(status) != Retryable {
			return nil, &UpstreamError{Path: path, Status: status, Body: attempt.Data, Attempts: attempts}
		}
		log.Debug("typhon candidate rejected, trying next", "path", path, "status", status)
	}

	return nil, &ExhaustedError{Attempts: attempts}
}

func valueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
