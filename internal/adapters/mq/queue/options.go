package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*options)

type options struct {
	capacity int
	name     string
}

// WithCapacity sets the maximum number of buffered items.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithName labels the queue in error metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
