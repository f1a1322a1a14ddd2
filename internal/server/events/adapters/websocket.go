// Package adapters connects the event broker to its transports.
package adapters

import (
	"github.com/agentstation/userdetails/internal/server/events"
	ws "github.com/agentstation/userdetails/internal/server/websocket"
)

// WebSocketSubscriber adapts the WebSocket hub to the Subscriber interface.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a new WebSocket subscriber.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send delivers an event to all WebSocket clients.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(ToMessage(event))
	return nil
}

// Close is a no-op; the hub manages its own lifecycle.
func (w *WebSocketSubscriber) Close() error {
	return nil
}

// ToMessage converts a broker event to a WebSocket frame.
func ToMessage(event events.Event) ws.Message {
	return ws.Message{
		ID:        event.ID,
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	}
}
