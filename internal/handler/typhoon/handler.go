package typhoon

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tanutchapol/backend-ChatBot/internal/config"
	"github.com/tanutchapol/backend-ChatBot/internal/handler/apierror"
	"github.com/tanutchapol/backend-ChatBot/internal/model/chat"
	"github.com/tanutchapol/backend-ChatBot/internal/service/ai"
	"github.com/tanutchapol/backend-ChatBot/pkg/utils"
)

// Upstream is the slice of the Typhon client these routes need.
type Upstream interface {
	ChatCompletions(ctx context.Context, payload ai.ChatPayload) (*ai.Completion, error)
	GenerateText(ctx context.Context, prompt string, opts ai.GenerateOptions) (json.RawMessage, error)
	ProxyRequest(ctx context.Context, method, path string, data json.RawMessage, params map[string]any) (json.RawMessage, error)
}

// Handler serves the unauthenticated Typhon passthrough routes.
type Handler struct {
	upstream Upstream
	cfg      config.UpstreamConfig
}

// New creates a Typhon handler.
func New(upstream Upstream, cfg config.UpstreamConfig) *Handler {
	return &Handler{upstream: upstream, cfg: cfg}
}

// RegisterRoutes mounts ping, generate, chat and proxy.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ping", h.handlePing)
	r.Post("/generate", h.handleGenerate)
	r.Post("/chat", h.handleChat)
	r.Post("/proxy", h.handleProxy)
	r.Get("/proxy", h.handleProxyUsage)
}

func (h *Handler) exampleModel(fallback string) string {
	if h.cfg.Model != "" {
		return h.cfg.Model
	}
	return fallback
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"hasBaseUrl": h.cfg.BaseURL != "",
		"hasApiKey":  h.cfg.APIKey != "",
		"model":      h.exampleModel("default-model"),
	}

	if !h.cfg.Ready() {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"success":     false,
			"message":     "Missing Typhon config",
			"info":        info,
			"requiredEnv": []string{"AITYPHON_BASE_URL", "AITYPHON_API_KEY"},
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Typhon config ready",
		"info":    info,
	})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt  string             `json:"prompt"`
		Options ai.GenerateOptions `json:"options"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Prompt == "" {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Missing prompt",
			"example": map[string]string{"prompt": "Write a poem about technology"},
		})
		return
	}

	result, err := h.upstream.GenerateText(r.Context(), payload.Prompt, payload.Options)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload ai.ChatPayload
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(payload.Messages) == 0 && payload.Prompt == "" {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Body must include messages[] or prompt",
			"example": map[string]any{
				"model":              h.exampleModel("typhoon-v2.5-30b-a3b-instruct"),
				"messages":           []chat.Turn{chat.UserTurn("Say hello in Thai")},
				"temperature":        0.7,
				"max_tokens":         2048,
				"top_p":              0.9,
				"repetition_penalty": 1.1,
				"stream":             false,
			},
		})
		return
	}

	res, err := h.upstream.ChatCompletions(r.Context(), payload)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"pathUsed": res.PathUsed,
		"result":   res.Data,
	})
}

func (h *Handler) handleProxy(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Method string          `json:"method"`
		Path   string          `json:"path"`
		Data   json.RawMessage `json:"data"`
		Params map[string]any  `json:"params"`
	}{Method: http.MethodPost, Path: "/"}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !strings.HasPrefix(payload.Path, "/") {
		utils.RespondError(w, http.StatusBadRequest, `Path must start with "/"`)
		return
	}

	result, err := h.upstream.ProxyRequest(r.Context(), payload.Method, payload.Path, payload.Data, payload.Params)
	if err != nil {
		apierror.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}

func (h *Handler) handleProxyUsage(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusMethodNotAllowed, map[string]any{
		"success": false,
		"message": "Use POST /ai-typhon/proxy with JSON body",
		"howTo":   "Send method, path, data, params in JSON body",
		"example": map[string]any{
			"method": http.MethodPost,
			"path":   "/v1/chat/completions",
			"data": map[string]any{
				"model":    h.exampleModel("your-model"),
				"messages": []chat.Turn{chat.UserTurn("Say hello in Thai")},
			},
		},
	})
}
