package form

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/userdetails/pkg/constants"
	"github.com/agentstation/userdetails/pkg/logging"
)

// Option configures a Form.
type Option func(*options)

type options struct {
	delay     time.Duration
	logger    *zerolog.Logger
	listeners []Listener
}

func defaultOptions() *options {
	return &options{
		delay:  constants.DefaultSubmitDelay,
		logger: logging.Default(),
	}
}

// WithDelay sets how long a submission stays pending before the record is
// handed to the holder. Negative values are treated as zero.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			d = 0
		}
		o.delay = d
	}
}

// WithLogger sets the logger used for submission lifecycle messages.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithListener registers fn to receive submission lifecycle events.
func WithListener(fn Listener) Option {
	return func(o *options) {
		if fn != nil {
			o.listeners = append(o.listeners, fn)
		}
	}
}
