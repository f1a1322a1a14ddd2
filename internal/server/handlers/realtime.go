package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/userdetails/internal/server/events"
	ws "github.com/agentstation/userdetails/internal/server/websocket"
)

// HandleWebSocket handles WebSocket connections at /api/v1/updates/ws. A
// new client first receives the current record, if any.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(uuid.NewString(), h.wsHub, conn)

	if record, ok := h.app.Store().Current(); ok {
		client.Enqueue(ws.Message{
			Type:      string(events.ProfileUpdated),
			Timestamp: time.Now(),
			Data: events.ProfileUpdate{
				Version: h.app.Store().Version(),
				Record:  record,
			},
		})
	}

	h.wsHub.Register(client)
	h.broker.Publish(events.ClientConnected, map[string]any{
		"transport": "websocket",
		"client":    client.ID(),
	})

	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles Server-Sent Events at /api/v1/updates/stream.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
