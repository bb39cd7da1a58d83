package api

import (
	"database/sql"
	"log/slog"
	"net/http"
)

// HealthHandler reports whether the database is reachable.
type HealthHandler struct {
	DB *sql.DB
}

type healthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		jsonResponse(w, http.StatusServiceUnavailable, healthResponse{Success: false, Status: "database unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, healthResponse{Success: true, Status: "ok"})
}
