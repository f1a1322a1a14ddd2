// Package server provides the HTTP server of the userdetails application:
// the HTML form page, the JSON API over form sessions and the submitted
// record, and real-time update streams.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/userdetails/cmd/application"
	"github.com/agentstation/userdetails/internal/server/events"
	"github.com/agentstation/userdetails/internal/server/events/adapters"
	"github.com/agentstation/userdetails/internal/server/sse"
	ws "github.com/agentstation/userdetails/internal/server/websocket"
	"github.com/agentstation/userdetails/internal/session"
	"github.com/agentstation/userdetails/internal/view"
	"github.com/agentstation/userdetails/pkg/form"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app            application.Application
	sessions       *session.Manager
	display        *view.Display
	renderer       *view.Renderer
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	metrics        *metrics
	stopWatch      func()
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	startTime      time.Time
}

// New creates a server over the application's record store.
func New(app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()
	defaults := DefaultConfig()
	if cfg.SubmitDelay < 0 {
		return nil, fmt.Errorf("submit delay must not be negative: %s", cfg.SubmitDelay)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaults.SessionTTL
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = defaults.PathPrefix
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	// Transports only hear about the store and forms through the broker.
	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		app:            app,
		display:        view.NewDisplay(app.Store()),
		renderer:       renderer,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		startTime: time.Now(),
	}

	s.metrics = newMetrics(s)
	s.sessions = session.NewManager(app.Store(),
		session.WithTTL(cfg.SessionTTL),
		session.WithSecureCookie(cfg.SecureCookies),
		session.WithLogger(logger),
		session.WithFormOptions(s.formOptions),
	)
	s.stopWatch = broker.WatchStore(app.Store())
	sseBroadcaster.OnConnect(s.currentProfileEvents)

	logger.Debug().
		Dur("submit_delay", cfg.SubmitDelay).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("Server instance created")
	return s, nil
}

// formOptions configures the form of a new session.
func (s *Server) formOptions(publicID string) []form.Option {
	logger := s.logger.With().Str("session", publicID).Logger()
	return []form.Option{
		form.WithDelay(s.config.SubmitDelay),
		form.WithLogger(&logger),
		form.WithListener(s.broker.FormListener(publicID)),
		form.WithListener(s.metrics.observeSubmission),
	}
}

// currentProfileEvents replays the current record to a new SSE client.
func (s *Server) currentProfileEvents() []sse.Event {
	record, ok := s.app.Store().Current()
	if !ok {
		return nil
	}
	return []sse.Event{{
		Event: string(events.ProfileUpdated),
		Data: events.ProfileUpdate{
			Version: s.app.Store().Version(),
			Record:  record,
		},
	}}
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster).
func (s *Server) Start() {
	s.logger.Debug().Msg("Starting background services")

	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)
	go func() {
		defer close(s.done)
		s.sseBroadcaster.Run(s.ctx)
	}()
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown closes every form session, which cancels pending submissions,
// and stops the background services.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")

	s.sessions.Close()
	s.stopWatch()
	s.display.Close()
	s.cancel()

	select {
	case <-s.done:
		s.logger.Info().Msg("Background services shut down successfully")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Sessions returns the form session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
