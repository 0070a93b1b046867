package sheets

import (
	"net/http"
	"strings"

	log "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	sheetService "github.com/tanutchapol/backend-ChatBot/internal/service/sheets"
	"github.com/tanutchapol/backend-ChatBot/pkg/utils"
)

const testConnectionRange = "Sheet1!A1:C10"

// Handler exposes raw spreadsheet access. Protected sheets are hidden from reads.
type Handler struct {
	store         sheetService.Store
	spreadsheetID string
	protected     map[string]struct{}
}

// New creates a sheets handler. store may be nil when credentials could not be loaded.
func New(store sheetService.Store, spreadsheetID string, protected []string) *Handler {
	set := make(map[string]struct{}, len(protected))
	for _, name := range protected {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			set[name] = struct{}{}
		}
	}
	return &Handler{store: store, spreadsheetID: spreadsheetID, protected: set}
}

// RegisterRoutes mounts the spreadsheet routes at the root.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/test-connection", h.handleTestConnection)
	r.Get("/read", h.handleRead)
	r.Post("/write", h.handleWrite)
	r.Post("/append", h.handleAppend)
}

func (h *Handler) isProtected(a1Range string) bool {
	_, ok := h.protected[strings.ToLower(sheetService.SheetName(a1Range))]
	return ok
}

func (h *Handler) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	if h.spreadsheetID == "" {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"success":     false,
			"message":     "GOOGLE_SPREADSHEET_ID is not set",
			"instruction": "Add GOOGLE_SPREADSHEET_ID to your .env file",
		})
		return
	}
	if !h.ready(w) {
		return
	}

	rows, err := h.store.Read(r.Context(), h.spreadsheetID, testConnectionRange)
	if err != nil {
		log.Warn("sheets connection test failed", "err", err)
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Connection failed",
			"error":   err.Error(),
			"possibleReasons": []string{
				"Check that credentials.json is present in the project directory",
				"Check that the spreadsheet is shared with the service account",
				"Check that the spreadsheet id is correct",
				`Check that the sheet is named "Sheet1" or adjust the range`,
			},
		})
		return
	}

	preview := rows
	if len(preview) > 3 {
		preview = preview[:3]
	}
	if preview == nil {
		preview = [][]any{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Connected to Google Sheets",
		"spreadsheetId": h.spreadsheetID,
		"dataPreview":   preview,
		"totalRows":     len(rows),
	})
}

func (h *Handler) handleRead(w http.ResponseWriter, r *http.Request) {
	spreadsheetID := h.target(r.URL.Query().Get("spreadsheetId"))
	readRange := r.URL.Query().Get("range")

	if spreadsheetID == "" {
		utils.RespondError(w, http.StatusBadRequest, "set GOOGLE_SPREADSHEET_ID or pass spreadsheetId in the query")
		return
	}
	if readRange == "" {
		utils.RespondError(w, http.StatusBadRequest, "range is required")
		return
	}
	if h.isProtected(readRange) {
		utils.RespondError(w, http.StatusNotFound, "Not Found")
		return
	}
	if !h.ready(w) {
		return
	}

	rows, err := h.store.Read(r.Context(), spreadsheetID, readRange)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "data": rows})
}

type writeRequest struct {
	SpreadsheetID string  `json:"spreadsheetId"`
	Range         string  `json:"range"`
	Values        [][]any `json:"values"`
}

func (h *Handler) decodeWrite(w http.ResponseWriter, r *http.Request) (writeRequest, bool) {
	var payload writeRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return payload, false
	}

	payload.SpreadsheetID = h.target(payload.SpreadsheetID)
	if payload.SpreadsheetID == "" {
		utils.RespondError(w, http.StatusBadRequest, "set GOOGLE_SPREADSHEET_ID or pass spreadsheetId in the body")
		return payload, false
	}
	if payload.Range == "" || payload.Values == nil {
		utils.RespondError(w, http.StatusBadRequest, "range and values are required")
		return payload, false
	}
	return payload, h.ready(w)
}

func (h *Handler) handleWrite(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeWrite(w, r)
	if !ok {
		return
	}

	result, err := h.store.Update(r.Context(), payload.SpreadsheetID, payload.Range, payload.Values)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}

func (h *Handler) handleAppend(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeWrite(w, r)
	if !ok {
		return
	}

	result, err := h.store.Append(r.Context(), payload.SpreadsheetID, payload.Range, payload.Values)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}

func (h *Handler) target(requested string) string {
	if requested != "" {
		return requested
	}
	return h.spreadsheetID
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.store == nil {
		utils.RespondError(w, http.StatusInternalServerError, "Google Sheets client is not available; check GOOGLE_CREDENTIALS_FILE")
		return false
	}
	return true
}
