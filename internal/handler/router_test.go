package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tanutchapol/backend-ChatBot/internal/config"
	authHandler "github.com/tanutchapol/backend-ChatBot/internal/handler/auth"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/health"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/session"
	sheetsHandler "github.com/tanutchapol/backend-ChatBot/internal/handler/sheets"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/typhoon"
	"github.com/tanutchapol/backend-ChatBot/internal/service/ai"
	authService "github.com/tanutchapol/backend-ChatBot/internal/service/auth"
	chatService "github.com/tanutchapol/backend-ChatBot/internal/service/chat"
	"github.com/tanutchapol/backend-ChatBot/internal/service/chatlog"
	"github.com/tanutchapol/backend-ChatBot/internal/service/conversation"
	"github.com/tanutchapol/backend-ChatBot/internal/service/sheets"
)

type gateway struct {
	handler  http.Handler
	store    *sheets.MemoryStore
	logs     *chatlog.AsyncDispatcher
	mu       sync.Mutex
	upstream []map[string]any
}

func (g *gateway) upstreamBodies() []map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]map[string]any(nil), g.upstream...)
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	g := &gateway{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]any
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		g.mu.Lock()
		g.upstream = append(g.upstream, body)
		g.mu.Unlock()
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`)
	}))
	t.Cleanup(srv.Close)

	upstreamCfg := config.UpstreamConfig{
		BaseURL:        srv.URL,
		APIKey:         "secret",
		Model:          "typhoon-test",
		Timeout:        time.Second,
		CandidatePaths: []string{"/v1/chat/completions", "/v1beta/chat/completions"},
	}
	client, err := ai.NewClient(upstreamCfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	g.store = sheets.NewMemoryStore(map[string][][]any{
		"Sheet2":  {{"123456", "Alice"}},
		"Secrets": {{"hidden"}},
	})
	authority := authService.NewAuthority(authService.NewMemoryStore(), time.Hour)
	login := authService.NewLoginService(authService.NewSheetDirectory(g.store, "sheet-1", "Sheet2"), authority)

	g.logs = chatlog.NewAsyncDispatcher(chatlog.NewSink(g.store, "sheet-1", chatlog.DefaultSheet), chatlog.AsyncOptions{})
	conv := conversation.NewService(authority, chatService.NewService(), client, g.logs, upstreamCfg.Model)

	g.handler = NewRouter(Routes{
		Health:  health.New("3000"),
		Sheets:  sheetsHandler.New(g.store, "sheet-1", []string{"Secrets"}),
		Auth:    authHandler.New(login, authority),
		Typhoon: typhoon.New(client, upstreamCfg),
		Session: session.New(conv),
	})
	return g
}

func (g *gateway) do(method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	g.handler.ServeHTTP(resp, req)

	var decoded map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &decoded)
	return resp, decoded
}

func TestGatewayConversationFlow(t *testing.T) {
	g := newGateway(t)

	resp, body := g.do(http.MethodPost, "/auth/pin/login", `{"pin":"123456"}`, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login: missing token in %v", body)
	}

	resp, body = g.do(http.MethodPost, "/ai-typhon/session/s1/message", `{"content":"hi","system":"be terse"}`, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("message: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if body["reply"] != "hello" || body["historySize"] != 3.0 || body["pathUsed"] != "/v1beta/chat/completions" {
		t.Fatalf("message: unexpected body %v", body)
	}

	calls := g.upstreamBodies()
	if len(calls) != 1 {
		t.Fatalf("expected one successful upstream call, got %d", len(calls))
	}
	messages, _ := calls[0]["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user turns upstream, got %v", messages)
	}
	if first, _ := messages[0].(map[string]any); first["role"] != "system" || first["content"] != "be terse" {
		t.Fatalf("expected leading system turn, got %v", messages[0])
	}

	_, body = g.do(http.MethodGet, "/ai-typhon/session/s1/history", "", token)
	if history, _ := body["messages"].([]any); len(history) != 3 {
		t.Fatalf("history: expected 3 turns, got %v", body["messages"])
	}

	_, body = g.do(http.MethodDelete, "/ai-typhon/session/s1", "", token)
	if body["cleared"] != true {
		t.Fatalf("first clear: expected true, got %v", body)
	}
	_, body = g.do(http.MethodDelete, "/ai-typhon/session/s1", "", token)
	if body["cleared"] != false {
		t.Fatalf("second clear: expected false, got %v", body)
	}

	if err := g.logs.Close(context.Background()); err != nil {
		t.Fatalf("close dispatcher: %v", err)
	}
	if rows := g.store.Rows(chatlog.DefaultSheet); len(rows) != 2 {
		t.Fatalf("expected user and assistant rows in the chat log, got %v", rows)
	}
}

func TestGatewayRejectsMissingToken(t *testing.T) {
	g := newGateway(t)
	t.Cleanup(func() { _ = g.logs.Close(context.Background()) })

	resp, body := g.do(http.MethodPost, "/ai-typhon/session/s1/message", `{"content":"hi"}`, "")
	if resp.Code != http.StatusUnauthorized || body["error"] != "Unauthorized" {
		t.Fatalf("expected 401 Unauthorized, got %d %v", resp.Code, body)
	}

	resp, _ = g.do(http.MethodGet, "/auth/me", "", "not-a-token")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 from /auth/me, got %d", resp.Code)
	}
	if len(g.upstreamBodies()) != 0 {
		t.Fatalf("unauthorized request reached upstream")
	}
}

func TestGatewayProtectedSheetAndCORS(t *testing.T) {
	g := newGateway(t)
	t.Cleanup(func() { _ = g.logs.Close(context.Background()) })

	resp, _ := g.do(http.MethodGet, "/read?range=Secrets!A1", "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected protected sheet to be hidden, got %d", resp.Code)
	}

	resp, _ = g.do(http.MethodOptions, "/ai-typhon/chat", "", "")
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard CORS origin, got %q", resp.Header().Get("Access-Control-Allow-Origin"))
	}

	resp, body := g.do(http.MethodGet, "/health", "", "")
	if resp.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health %d %v", resp.Code, body)
	}
}
