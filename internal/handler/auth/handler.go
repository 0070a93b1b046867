package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/tanutchapol/backend-ChatBot/internal/middleware"
	authService "github.com/tanutchapol/backend-ChatBot/internal/service/auth"
	"github.com/tanutchapol/backend-ChatBot/pkg/utils"
)

// Handler serves PIN login and token lifecycle routes.
type Handler struct {
	login     *authService.LoginService
	authority *authService.Authority
}

// New creates an auth handler.
func New(login *authService.LoginService, authority *authService.Authority) *Handler {
	return &Handler{login: login, authority: authority}
}

// RegisterRoutes mounts /pin/login, /me and /logout.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/pin/login", h.handleLogin)
	r.With(middleware.RequireAuth(h.authority)).Get("/me", h.handleMe)
	r.Post("/logout", h.handleLogout)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PIN json.RawMessage `json:"pin"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, authService.ErrInvalidPIN.Error())
		return
	}

	session, err := h.login.Login(r.Context(), pinValue(payload.PIN))
	if err != nil {
		switch {
		case errors.Is(err, authService.ErrInvalidPIN):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, authService.ErrUnknownPIN):
			utils.RespondError(w, http.StatusUnauthorized, err.Error())
		default:
			log.Error("pin login failed", "err", err)
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     session.Token,
		"expiresAt": session.ExpiresAt.UnixMilli(),
		"user":      session.User,
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	revoked := token != "" && h.authority.Revoke(r.Context(), token)
	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "revoked": revoked})
}

// pinValue accepts the PIN as a JSON string or a bare number.
func pinValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
