// Package constants provides shared constants used throughout the userdetails
// codebase: submission timing, session lifetimes, server defaults and file
// permissions.
package constants

import "time"

// Form constants
const (
	// DefaultSubmitDelay is how long a valid submission stays in the
	// Submitting state before the record reaches the store.
	DefaultSubmitDelay = 3 * time.Second

	// SubmitLabel is the idle label of the submit control.
	SubmitLabel = "Submit"

	// SubmittingLabel is shown on the submit control while a submission is pending.
	SubmittingLabel = "Submitting..."
)

// Session constants
const (
	// SessionCookieName identifies a browser's form session.
	SessionCookieName = "userdetails_session"

	// DefaultSessionTTL is how long an idle form session is kept.
	DefaultSessionTTL = 30 * time.Minute

	// SessionCleanupInterval is how often expired sessions are evicted.
	SessionCleanupInterval = 5 * time.Minute
)

// Server constants
const (
	// DefaultHost is the default bind address.
	DefaultHost = "localhost"

	// DefaultPort is the default HTTP port.
	DefaultPort = 8080

	// DefaultPathPrefix is the prefix of the JSON API.
	DefaultPathPrefix = "/api/v1"

	// DefaultRateLimit is the default requests per minute per IP.
	DefaultRateLimit = 120

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout = 30 * time.Second

	// ChannelBufferSize is the buffer size of event fan-out channels.
	ChannelBufferSize = 256

	// MaxRequestBodyBytes caps form and JSON request bodies.
	MaxRequestBodyBytes = 1 << 20
)

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Format constants
const (
	// DateLayout is the layout produced by HTML date inputs.
	DateLayout = "2006-01-02"
)
