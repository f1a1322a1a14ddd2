// Package session keeps one form per browser, identified by a cookie, in a
// TTL cache. Expired or deleted sessions have their form closed, which
// cancels any pending submission.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/userdetails/internal/server/cache"
	"github.com/agentstation/userdetails/pkg/constants"
	"github.com/agentstation/userdetails/pkg/form"
	"github.com/agentstation/userdetails/pkg/logging"
)

// Session is one browser's form.
type Session struct {
	// ID is the secret cookie value.
	ID string
	// PublicID identifies the session on the shared update stream.
	PublicID string
	Form     *form.Form
	Created  time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets how long an idle session is kept.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often expired sessions are evicted.
func WithCleanupInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.cleanup = d
		}
	}
}

// WithFormOptions sets a function returning the options of each new form.
// It receives the session's public ID.
func WithFormOptions(fn func(publicID string) []form.Option) Option {
	return func(m *Manager) {
		m.formOptions = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// Manager creates, finds and expires sessions.
type Manager struct {
	sessions    *cache.Cache[*Session]
	holder      form.Updater
	ttl         time.Duration
	cleanup     time.Duration
	secure      bool
	formOptions func(publicID string) []form.Option
	logger      *zerolog.Logger
}

// NewManager creates a manager whose forms submit to holder.
func NewManager(holder form.Updater, opts ...Option) *Manager {
	m := &Manager{
		holder:  holder,
		ttl:     constants.DefaultSessionTTL,
		cleanup: constants.SessionCleanupInterval,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.sessions = cache.New[*Session](m.ttl, m.cleanup)
	m.sessions.OnEvicted(func(id string, s *Session) {
		s.Form.Close()
		m.logger.Debug().Str("session", s.PublicID).Msg("Session closed")
	})
	return m
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	publicID := uuid.NewString()
	var opts []form.Option
	if m.formOptions != nil {
		opts = m.formOptions(publicID)
	}

	s := &Session{
		ID:       uuid.NewString(),
		PublicID: publicID,
		Form:     form.New(m.holder, opts...),
		Created:  time.Now(),
	}
	m.sessions.Set(s.ID, s)

	m.logger.Debug().Str("session", s.PublicID).Msg("Session created")
	return s
}

// Get returns the session for id and extends its lifetime.
func (m *Manager) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	m.sessions.Touch(id)
	return s, true
}

// FromRequest returns the caller's session, creating one and setting the
// cookie when the request carries none or an expired one.
func (m *Manager) FromRequest(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(constants.SessionCookieName); err == nil {
		if s, ok := m.Get(c.Value); ok {
			return s
		}
	}

	s := m.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Delete ends a session and closes its form.
func (m *Manager) Delete(id string) {
	m.sessions.Delete(id)
}

// Expire evicts expired sessions now.
func (m *Manager) Expire() {
	m.sessions.DeleteExpired()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}

// Close closes every form and drops all sessions.
func (m *Manager) Close() {
	for _, s := range m.sessions.Values() {
		s.Form.Close()
	}
	m.sessions.Clear()
}
