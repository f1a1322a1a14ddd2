package application

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/userdetails/pkg/constants"
	"github.com/agentstation/userdetails/pkg/store"
)

// Mock is an Application for tests. Each method uses the corresponding
// function field when set and a default otherwise.
type Mock struct {
	StoreFunc        func() *store.Store
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	SubmitDelayFunc  func() time.Duration
	SessionTTLFunc   func() time.Duration
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string

	once  sync.Once
	store *store.Store
}

// Store returns the mock store or a lazily created empty one.
func (m *Mock) Store() *store.Store {
	if m.StoreFunc != nil {
		return m.StoreFunc()
	}
	m.once.Do(func() {
		m.store = store.New(m.Logger())
	})
	return m.store
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// SubmitDelay returns the delay using the mock function or the default.
func (m *Mock) SubmitDelay() time.Duration {
	if m.SubmitDelayFunc != nil {
		return m.SubmitDelayFunc()
	}
	return constants.DefaultSubmitDelay
}

// SessionTTL returns the TTL using the mock function or the default.
func (m *Mock) SessionTTL() time.Duration {
	if m.SessionTTLFunc != nil {
		return m.SessionTTLFunc()
	}
	return constants.DefaultSessionTTL
}

// Version returns a version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns a commit using the mock function or "none".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "none"
}

// Date returns a date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns a builder using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Compile-time check.
var _ Application = (*Mock)(nil)
