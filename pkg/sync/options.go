// Package sync orchestrates one reconciliation run: catalog listing,
// supplier fetch, plan construction, and bulk write, for a single
// supplier/location pair.
package sync

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Kirkidoo/Sync-Stock/pkg/logging"
)

// Options controls one reconciliation run.
type Options struct {
	// DryRun builds the plan and reports it without writing to the
	// catalog.
	DryRun bool

	// Timeout bounds the whole run. Zero means no timeout beyond the
	// caller's context.
	Timeout time.Duration

	// Logger receives the run's diagnostics.
	Logger zerolog.Logger
}

// Defaults returns the default run options.
func Defaults() *Options {
	return &Options{
		Logger: *logging.Default(),
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option is a function that configures run Options.
type Option func(*Options)

// WithDryRun plans without writing.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithTimeout bounds the whole run.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithLogger routes the run's diagnostics to the given logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
