package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/agentstation/userdetails/internal/server/handlers"
	"github.com/agentstation/userdetails/internal/server/middleware"
	"github.com/agentstation/userdetails/pkg/constants"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(handlers.Deps{
		App:            s.app,
		Sessions:       s.sessions,
		Display:        s.display,
		Renderer:       s.renderer,
		Broker:         s.broker,
		WSHub:          s.wsHub,
		SSEBroadcaster: s.sseBroadcaster,
		Upgrader:       s.upgrader,
		Logger:         s.logger,
		StreamPath:     s.config.PathPrefix + "/updates/stream",
		StartTime:      s.startTime,
	})

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// HTML page
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			h.HandlePage(w, r)
		case http.MethodPost:
			h.HandlePageAction(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	})
	mux.HandleFunc("/display", onlyMethod(http.MethodGet, h.HandleDisplay))

	// Health endpoints
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Submitted record
	mux.HandleFunc(prefix+"/profile", onlyMethod(http.MethodGet, h.HandleGetProfile))
	mux.HandleFunc(prefix+"/profile/text", onlyMethod(http.MethodGet, h.HandleProfileText))

	// Form session
	mux.HandleFunc(prefix+"/form", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleGetForm(w, r)
		case http.MethodPut:
			h.HandleReplaceForm(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut)
		}
	})
	mux.HandleFunc(prefix+"/form/submit", onlyMethod(http.MethodPost, h.HandleSubmit))
	mux.HandleFunc(prefix+"/form/cancel", onlyMethod(http.MethodPost, h.HandleCancel))
	mux.HandleFunc(prefix+"/form/techstack", onlyMethod(http.MethodPost, h.HandleAppendTechStack))
	mux.HandleFunc(prefix+"/form/techstack/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, http.MethodDelete)
			return
		}
		index, err := strconv.Atoi(extractPathParam(r.URL.Path, prefix+"/form/techstack/"))
		if err != nil {
			http.Error(w, "Tech stack index must be a number", http.StatusBadRequest)
			return
		}
		h.HandleRemoveTechStack(w, r, index)
	})

	// Real-time endpoints
	mux.HandleFunc(prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc(prefix+"/updates/stream", h.HandleSSE)

	// Metrics endpoint (optional)
	if s.config.MetricsEnabled {
		mux.Handle("/metrics", s.metrics.handler())
	}
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	var chain []func(http.Handler) http.Handler
	chain = append(chain,
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
		middleware.BodyLimit(constants.MaxRequestBodyBytes),
	)

	if cfg.MetricsEnabled {
		chain = append(chain, middleware.Observe(s.metrics.observeRequest))
	}

	// CORS (if enabled)
	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
			corsConfig.AllowAll = false
		} else {
			corsConfig.AllowAll = true
		}
		chain = append(chain, middleware.CORS(corsConfig))
	}

	// Rate limiting (if enabled)
	if cfg.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(s.ctx, cfg.RateLimit, s.logger)
		chain = append(chain, middleware.RateLimit(rateLimiter))
	}

	return middleware.Chain(chain...)(handler)
}

// onlyMethod restricts a handler to a single method.
func onlyMethod(method string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			methodNotAllowed(w, method)
			return
		}
		fn(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// extractPathParam extracts path parameter from URL.
func extractPathParam(path, prefix string) string {
	trimmed := strings.TrimPrefix(path, prefix)
	parts := strings.Split(trimmed, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}
