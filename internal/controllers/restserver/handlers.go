package restserver

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/brugmelding/brugwacht/internal/constants"
	"github.com/brugmelding/brugwacht/internal/log"
)

// Query parameter defaults for the history endpoint.
const (
	defaultHistoryLimit = 10
	defaultHistoryHours = 24
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{controller: ctrl}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// queryInt reads a positive integer query parameter, falling back to a
// default for absent, malformed or non-positive values.
func queryInt(req *http.Request, name string, fallback int) int {
	value := req.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// GetHistory handles requests for recent status transitions of one bridge
func (h *Handlers) GetHistory(w http.ResponseWriter, req *http.Request) {
	bridgeID := req.URL.Query().Get("id")
	if bridgeID == "" {
		writeError(w, http.StatusBadRequest, "parameter \"id\" is required")
		return
	}

	if h.controller.reader == nil {
		writeError(w, http.StatusServiceUnavailable, "history store is not configured")
		return
	}

	limit := queryInt(req, "limit", defaultHistoryLimit)
	hours := queryInt(req, "hours", defaultHistoryHours)

	entries, err := h.controller.reader.Recent(bridgeID, limit, hours)
	if err != nil {
		log.Errorf("error fetching history for bridge %s: %v", bridgeID, err)
		writeError(w, http.StatusInternalServerError, "could not fetch history")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// GetSnapshot serves the most recently written snapshot file
func (h *Handlers) GetSnapshot(w http.ResponseWriter, req *http.Request) {
	content, err := os.ReadFile(h.controller.snapshotPath)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(content)
}

// GetHealth reports service liveness and whether history is persisted
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": constants.Version,
		"history": h.controller.reader != nil,
	})
}
