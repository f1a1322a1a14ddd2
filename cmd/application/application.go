// Package application defines what userdetails commands need from the
// running application.
//
// Commands accept the Application interface rather than the concrete App,
// so they can be tested with Mock:
//
//	mock := &application.Mock{
//	    SubmitDelayFunc: func() time.Duration { return 10 * time.Millisecond },
//	}
//	cmd := serve.NewCommand(mock)
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/userdetails/pkg/store"
)

// Application provides the application interface that commands need. The
// App struct from cmd/userdetails/app implements it.
//
// All methods must be safe for concurrent access.
type Application interface {
	// Store returns the process wide record holder shared by every form
	// session and display.
	Store() *store.Store

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// SubmitDelay returns how long a submission stays pending.
	SubmitDelay() time.Duration

	// SessionTTL returns how long an idle form session is kept.
	SessionTTL() time.Duration

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
