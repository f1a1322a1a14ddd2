// Package app provides the application context and dependency management
// for the userdetails CLI: configuration, logging, and the record store
// shared by every command.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/userdetails/cmd/application"
	"github.com/agentstation/userdetails/pkg/errors"
	"github.com/agentstation/userdetails/pkg/store"
)

// App represents the userdetails application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Record store (lazy-initialized, singleton)
	mu    sync.Mutex
	store *store.Store
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and config files and can
// be replaced with options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// SubmitDelay returns how long a submission stays pending.
func (a *App) SubmitDelay() time.Duration {
	return a.config.SubmitDelay
}

// SessionTTL returns how long an idle form session is kept.
func (a *App) SessionTTL() time.Duration {
	return a.config.SessionTTL
}

// Store returns the record store, creating it on first use.
func (a *App) Store() *store.Store {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store == nil {
		a.store = store.New(a.logger)
	}
	return a.store
}

// Shutdown performs graceful shutdown of the application. The store holds
// no external resources, so there is nothing to release yet beyond logging.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Application shut down")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStore sets a custom record store (useful for testing).
func WithStore(s *store.Store) Option {
	return func(a *App) error {
		a.store = s
		return nil
	}
}
