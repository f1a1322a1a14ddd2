package events

// Subscriber consumes the event stream. Implementations adapt it to a
// transport such as SSE or WebSocket.
type Subscriber interface {
	// Send delivers an event. It must not block on slow clients.
	Send(Event) error

	// Close releases the subscriber.
	Close() error
}
