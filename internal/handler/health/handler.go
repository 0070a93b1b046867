package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tanutchapol/backend-ChatBot/pkg/utils"
)

const banner = "Google Sheets API Server - up and running!"

var now = time.Now

// Handler reports liveness.
type Handler struct {
	startedAt time.Time
	port      string
}

// New creates a health handler for a server listening on port.
func New(port string) *Handler {
	return &Handler{startedAt: now(), port: port}
}

// RegisterRoutes mounts / and /health.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(banner))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	current := now()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    current.Sub(h.startedAt).Seconds(),
		"timestamp": current.UTC().Format("2006-01-02T15:04:05.000Z"),
		"port":      h.port,
	})
}
