package ai

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingConfiguration is returned when the base URL or API key is absent.
	ErrMissingConfiguration = errors.New("missing Typhon configuration")
	// ErrInvalidRequest is returned before any network call for unusable payloads.
	ErrInvalidRequest = errors.New("invalid request")
)

// Attempt records one rejected call against a candidate path.
type Attempt struct {
	Path   string          `json:"path"`
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// UpstreamError is a non-retryable provider response.
type UpstreamError struct {
	Path     string
	Status   int
	Body     json.RawMessage
	Attempts []Attempt
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Typhon %d at %s", e.Status, e.Path)
}

// ExhaustedError means every candidate path rejected the request shape.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	return "All candidate chat/completion paths failed (404/405). Provide correct endpoint or update configuration."
}

// NetworkError means no response was received, timeouts included.
type NetworkError struct {
	Path     string
	Err      error
	Attempts []Attempt
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Typhon request to %s failed: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AttemptsOf returns the attempt history carried by err, if any.
func AttemptsOf(err error) []Attempt {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Attempts
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		return exhausted.Attempts
	}
	var network *NetworkError
	if errors.As(err, &network) {
		return network.Attempts
	}
	return nil
}
