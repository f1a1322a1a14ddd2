package server

import (
	"time"

	"github.com/agentstation/userdetails/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Form settings
	SubmitDelay   time.Duration
	SessionTTL    time.Duration
	SecureCookies bool

	// Performance settings
	RateLimit int // Requests per minute per IP (0 to disable)

	// HTTP timeouts. WriteTimeout stays zero by default because the
	// update streams are long lived responses.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Features
	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:           constants.DefaultHost,
		Port:           constants.DefaultPort,
		PathPrefix:     constants.DefaultPathPrefix,
		CORSOrigins:    []string{},
		SubmitDelay:    constants.DefaultSubmitDelay,
		SessionTTL:     constants.DefaultSessionTTL,
		RateLimit:      constants.DefaultRateLimit,
		ReadTimeout:    10 * time.Second,
		IdleTimeout:    120 * time.Second,
		MetricsEnabled: true,
	}
}
