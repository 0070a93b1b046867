package ai

import (
	"bytes"
	"encoding/json"
)

// Shape names the provider response layout a reply was found in.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeChatChoices
	ShapeOutputText
	ShapeText
)

func (s Shape) String() string {
	switch s {
	case ShapeChatChoices:
		return "choices"
	case ShapeOutputText:
		return "output_text"
	case ShapeText:
		return "text"
	default:
		return "none"
	}
}

type extractor struct {
	shape   Shape
	extract func(fields map[string]json.RawMessage) (string, bool)
}

var extractors = []extractor{
	{shape: ShapeChatChoices, extract: extractChoices},
	{shape: ShapeOutputText, extract: stringField("output_text")},
	{shape: ShapeText, extract: stringField("text")},
}

// ExtractReply pulls the assistant text out of a raw provider response.
// Unknown layouts yield "" and ShapeNone.
func ExtractReply(raw json.RawMessage) (string, Shape) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", ShapeNone
	}

	for _, e := range extractors {
		if text, ok := e.extract(fields); ok {
			return text, e.shape
		}
	}
	return "", ShapeNone
}

func extractChoices(fields map[string]json.RawMessage) (string, bool) {
	raw, ok := fields["choices"]
	if !ok {
		return "", false
	}

	var choices []struct {
		Message *struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &choices); err != nil || len(choices) == 0 || choices[0].Message == nil {
		return "", false
	}

	return decodeString(choices[0].Message.Content)
}

func stringField(name string) func(map[string]json.RawMessage) (string, bool) {
	return func(fields map[string]json.RawMessage) (string, bool) {
		raw, ok := fields[name]
		if !ok {
			return "", false
		}
		return decodeString(raw)
	}
}

// decodeString accepts JSON strings only; null and other types do not match.
func decodeString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
