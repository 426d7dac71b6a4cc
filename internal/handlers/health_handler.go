package handlers

import (
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthCheck reports liveness of the launcher itself, independent of
// the children's state.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "studio-launcher",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
