// Package handlers provides HTTP request handlers for the userdetails server.
package handlers

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/userdetails/cmd/application"
	"github.com/agentstation/userdetails/internal/server/events"
	"github.com/agentstation/userdetails/internal/server/sse"
	ws "github.com/agentstation/userdetails/internal/server/websocket"
	"github.com/agentstation/userdetails/internal/session"
	"github.com/agentstation/userdetails/internal/view"
)

// Deps are the dependencies shared by all handlers.
type Deps struct {
	App            application.Application
	Sessions       *session.Manager
	Display        *view.Display
	Renderer       *view.Renderer
	Broker         *events.Broker
	WSHub          *ws.Hub
	SSEBroadcaster *sse.Broadcaster
	Upgrader       websocket.Upgrader
	Logger         *zerolog.Logger

	// StreamPath is the SSE path the page listens on.
	StreamPath string
	StartTime  time.Time
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	app            application.Application
	sessions       *session.Manager
	display        *view.Display
	renderer       *view.Renderer
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	streamPath     string
	startTime      time.Time
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	return &Handlers{
		app:            d.App,
		sessions:       d.Sessions,
		display:        d.Display,
		renderer:       d.Renderer,
		broker:         d.Broker,
		wsHub:          d.WSHub,
		sseBroadcaster: d.SSEBroadcaster,
		upgrader:       d.Upgrader,
		logger:         d.Logger,
		streamPath:     d.StreamPath,
		startTime:      d.StartTime,
	}
}
