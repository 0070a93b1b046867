package apierror

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/charmbracelet/log"

	"github.com/tanutchapol/backend-ChatBot/internal/service/ai"
	"github.com/tanutchapol/backend-ChatBot/internal/service/conversation"
	"github.com/tanutchapol/backend-ChatBot/pkg/utils"
)

// Body is the failure envelope shared by the Typhon routes.
type Body struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error"`
	Upstream json.RawMessage `json:"upstream"`
	Attempts []ai.Attempt    `json:"attempts"`
}

// Status maps an error from the chat stack to an HTTP status.
func Status(err error) int {
	var upstream *ai.UpstreamError
	switch {
	case errors.Is(err, ai.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, conversation.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &upstream):
		if upstream.Status >= 400 && upstream.Status < 600 {
			return upstream.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Write renders err with upstream diagnostics.
func Write(w http.ResponseWriter, err error) {
	status := Status(err)
	body := Body{Error: err.Error(), Upstream: json.RawMessage("null"), Attempts: ai.AttemptsOf(err)}

	var upstream *ai.UpstreamError
	if errors.As(err, &upstream) && len(upstream.Body) > 0 {
		body.Upstream = upstream.Body
	}
	if errors.Is(err, conversation.ErrUnauthorized) {
		body.Error = "Unauthorized"
	}

	if status >= http.StatusInternalServerError {
		log.Error("typhon request failed", "status", status, "err", err)
	}
	utils.RespondJSON(w, status, body)
}
