package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tanutchapol/backend-ChatBot/internal/handler/apierror"
	"github.com/tanutchapol/backend-ChatBot/internal/middleware"
	"github.com/tanutchapol/backend-ChatBot/internal/model/chat"
	"github.com/tanutchapol/backend-ChatBot/internal/service/ai"
	"github.com/tanutchapol/backend-ChatBot/internal/service/conversation"
	"github.com/tanutchapol/backend-ChatBot/pkg/utils"
)

// Handler exposes session-based chat over HTTP.
type Handler struct {
	svc *conversation.Service
}

// New creates a session handler.
func New(svc *conversation.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session/{id}/message", h.handleMessage)
	r.Get("/session/{id}/history", h.handleHistory)
	r.Delete("/session/{id}", h.handleClear)
}

type messageRequest struct {
	Content *string   `json:"content"`
	Role    chat.Role `json:"role"`
	System  string    `json:"system"`
	Model   string    `json:"model"`
	ai.Options
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	token := middleware.TokenFromRequest(r)

	var payload messageRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		// Authentication is still reported first.
		if _, authErr := h.svc.Authenticate(r.Context(), token); authErr != nil {
			apierror.Write(w, authErr)
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := ""
	if payload.Content != nil {
		content = *payload.Content
	}

	res, err := h.svc.SendMessage(r.Context(), conversation.SendRequest{
		SessionID: sessionID,
		Token:     token,
		Content:   content,
		Role:      payload.Role,
		System:    payload.System,
		Model:     payload.Model,
		Options:   payload.Options,
	})
	if err != nil {
		apierror.Write(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"sessionId":   res.SessionID,
		"pathUsed":    res.PathUsed,
		"reply":       res.Reply,
		"historySize": res.HistorySize,
		"raw":         res.Raw,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	turns, err := h.svc.History(r.Context(), middleware.TokenFromRequest(r), sessionID)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"sessionId": sessionID,
		"messages":  turns,
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	cleared, err := h.svc.Clear(r.Context(), middleware.TokenFromRequest(r), sessionID)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"sessionId": sessionID,
		"cleared":   cleared,
	})
}
