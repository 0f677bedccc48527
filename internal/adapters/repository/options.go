package repository

import "time"

const (
	defaultQueryTimeout = 5 * time.Second
	defaultMaxConns     = 4
)

type options struct {
	queryTimeout time.Duration
	maxConns     int
}

func newOptions(opts []Option) options {
	o := options{queryTimeout: defaultQueryTimeout, maxConns: defaultMaxConns}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option applies a configuration option to the SQL backends.
type Option func(*options)

// WithQueryTimeout bounds every single store call.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.queryTimeout = d
		}
	}
}

// WithMaxConns caps the connection pool size.
func WithMaxConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConns = n
		}
	}
}
