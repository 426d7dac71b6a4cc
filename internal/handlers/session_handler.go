package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"climatestudio/internal/launcher"
)

const defaultLogLimit = 50

type SessionHandler struct {
	sess *launcher.Session
}

func NewSessionHandler(sess *launcher.Session) *SessionHandler {
	return &SessionHandler{sess: sess}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   err.Error(),
		Message: message,
	})
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Snapshot())
}

func (h *SessionHandler) GetProcesses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Snapshot().Processes)
}

// ReadyCheck answers 200 only once both children are running.
func (h *SessionHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	state := "ready"
	if !h.sess.Ready() {
		status = http.StatusServiceUnavailable
		state = "not ready"
	}
	writeJSON(w, status, HealthResponse{
		Status:    state,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (h *SessionHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, h.sess.Events(limit))
}
