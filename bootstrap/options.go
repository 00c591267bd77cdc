package bootstrap

import (
	"time"

	"github.com/kbukum/cradle/httpclient"
	"github.com/kbukum/cradle/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	clientOpts      []httpclient.Option
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application and installs it as
// the global logger. If not set, the logger is initialized from the
// config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithClientOptions passes extra options to the client, e.g. a custom Doer.
func WithClientOptions(opts ...httpclient.Option) Option {
	return func(o *appOptions) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}
