package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanutchapol/backend-ChatBot/internal/config"
)

func TestGenerateText(t *testing.T) {
	var gotPath string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"typhoon-test","choices":[{"index":0,"message":{"role":"assistant","content":"poem"},"finish_reason":"stop"}]}`)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(config.UpstreamConfig{BaseURL: srv.URL, APIKey: "k", Model: "typhoon-test"})
	require.NoError(t, err)

	res, err := c.GenerateText(context.Background(), "write a poem", GenerateOptions{})
	require.NoError(t, err)
	require.Equal(t, generatePath, gotPath)
	require.Equal(t, "typhoon-test", body["model"])
	require.Equal(t, float64(defaultGenerateMaxTokens), body["max_tokens"])

	messages, _ := body["messages"].([]any)
	require.Len(t, messages, 2)
	require.Equal(t, defaultSystemPrompt, messages[0].(map[string]any)["content"])

	reply, _ := ExtractReply(res)
	require.Equal(t, "poem", reply)
}

func TestGenerateTextUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(config.UpstreamConfig{BaseURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	_, err = c.GenerateText(context.Background(), "hi", GenerateOptions{})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusTooManyRequests, upstream.Status)
}

func TestGenerateTextRequiresPrompt(t *testing.T) {
	c, err := NewClient(config.UpstreamConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k"})
	require.NoError(t, err)

	_, err = c.GenerateText(context.Background(), "", GenerateOptions{})
	require.ErrorIs(t, err, ErrInvalidRequest)
}
