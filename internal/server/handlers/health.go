package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/userdetails/internal/server/response"
)

// HandleHealth handles GET /health and GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "userdetails",
		"version": h.app.Version(),
	})
}

// HandleReady handles GET /api/v1/ready.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	if h.app.Store() == nil {
		response.ServiceUnavailable(w, "Record store not available")
		return
	}

	response.OK(w, map[string]any{
		"status":            "ready",
		"uptime":            time.Since(h.startTime).Round(time.Second).String(),
		"sessions":          h.sessions.Count(),
		"profile_version":   h.app.Store().Version(),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
