package handlers

import (
	"log/slog"
	"net/http"
)

type HealthResponse struct {
	Status string `json:"status"`
	Tables int    `json:"tables,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.HealthService.Check(r.Context())
	if err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, HealthResponse{Status: "unavailable", Error: "database unavailable"}, http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, HealthResponse{Status: status.Status, Tables: status.Tables}, http.StatusOK)
}
