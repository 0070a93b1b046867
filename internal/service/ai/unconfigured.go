package ai

import (
	"context"
	"encoding/json"
)

// Unconfigured stands in for a Client that could not be built; every call returns Err.
type Unconfigured struct {
	Err error
}

func (u Unconfigured) ChatCompletions(context.Context, ChatPayload) (*Completion, error) {
	return nil, u.Err
}

func (u Unconfigured) GenerateText(context.Context, string, GenerateOptions) (json.RawMessage, error) {
	return nil, u.Err
}

func (u Unconfigured) ProxyRequest(context.Context, string, string, json.RawMessage, map[string]any) (json.RawMessage, error) {
	return nil, u.Err
}
