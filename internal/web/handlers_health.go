package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/procspec/internal/logging"
	"github.com/go-chi/render"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Processors *int64 `json:"processors,omitempty"`
}

// handleHealth pings the store under the fixed health check timeout.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Database.ProbeTimeout)
	defer cancel()

	err := s.store.Ping(ctx)
	var count int64
	if err == nil {
		count, err = s.store.Count(ctx)
	}
	if err != nil {
		logging.FromContext(ctx).Warn("health check failed", "error", err)
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, HealthResponse{Status: "unavailable", Database: "disconnected"})
		return
	}

	render.JSON(w, r, HealthResponse{Status: "ok", Database: "connected", Processors: &count})
}
