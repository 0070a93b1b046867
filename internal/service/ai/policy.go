package ai

import "net/http"

// Verdict tells the fallback loop what to do with a failed attempt.
type Verdict int

const (
	// Fatal stops the loop and surfaces the error.
	Fatal Verdict = iota
	// Retryable moves on to the next candidate path.
	Retryable
)

func (v Verdict) String() string {
	if v == Retryable {
		return "retryable"
	}
	return "fatal"
}

// DefaultCandidatePaths are tried in order when none are configured.
var DefaultCandidatePaths = []string{"/v1/chat/completions", "/v1beta/chat/completions", "/v1/completions"}

// Classify marks "not found" and "method not allowed" as a wrong request shape worth another path.
func Classify(status int) Verdict {
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return Retryable
	default:
		return Fatal
	}
}

// FallbackPolicy is an ordered candidate list plus the classifier applied to non-2xx answers.
type FallbackPolicy struct {
	Paths    []string
	Classify func(status int) Verdict
}

// NewFallbackPolicy copies paths, falling back to DefaultCandidatePaths when empty.
func NewFallbackPolicy(paths []string) FallbackPolicy {
	if len(paths) == 0 {
		paths = DefaultCandidatePaths
	}
	return FallbackPolicy{
		Paths:    append([]string(nil), paths...),
		Classify: Classify,
	}
}

func (p FallbackPolicy) verdict(status int) Verdict {
	if p.Classify == nil {
		return Classify(status)
	}
	return p.Classify(status)
}
