package handlers

import (
	"net/http"
	"time"

	"github.com/enjojoy/fredagent/internal/server/response"
)

// HandleHealth handles GET /api/v1/health (liveness probe).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "fredagent-api",
		"version": "v1",
	})
}

// HandleReady handles GET /api/v1/ready (readiness probe).
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status": "ready",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
		"jobs": h.jobs.Len(),
	})
}
