// Package worker runs a pool of goroutines that drain a job queue.
package worker

import (
	"github.com/okian/assay/pkg/logger"
)

// Option applies a configuration option to a worker pool.
type Option func(*options)

type options struct {
	name   string
	logger logger.Logger
}

// WithName sets the pool name used for worker identification and logging.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets a custom logger for the workers.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
