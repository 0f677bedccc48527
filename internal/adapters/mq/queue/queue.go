// Package queue provides a bounded in-process job queue.
//
// Enqueue never blocks: a full or closed queue rejects the item and the
// producer decides whether to retry.
package queue

import (
	"context"
	"sync"

	"github.com/okian/assay/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue[T any] interface {
	// Enqueue adds an item, returning ErrFull or ErrClosed when it cannot.
	Enqueue(ctx context.Context, item T) error

	// Dequeue returns a channel that receives items until the queue is
	// closed and drained or ctx is done.
	Dequeue(ctx context.Context) <-chan T

	// Len returns the current number of queued items.
	Len() int

	// Close stops accepting items. Already queued items are still delivered.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue[T any] struct {
	items chan T
	name  string

	mu     sync.RWMutex
	closed bool
}

// New creates a new in-memory queue.
func New[T any](opts ...Option) *InMemoryQueue[T] {
	o := options{capacity: defaultQueueCapacity, name: "queue"}
	for _, opt := range opts {
		opt(&o)
	}
	return &InMemoryQueue[T]{
		items: make(chan T, o.capacity),
		name:  o.name,
	}
}

// Enqueue adds an item to the queue.
func (q *InMemoryQueue[T]) Enqueue(ctx context.Context, item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent(q.name, "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordErrorByComponent(q.name, "context_cancelled")
		return err
	}

	select {
	case q.items <- item:
		return nil
	default:
		metrics.RecordErrorByComponent(q.name, "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive items as they become available.
func (q *InMemoryQueue[T]) Dequeue(ctx context.Context) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case item, ok := <-q.items:
				if !ok {
					return
				}
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued items.
func (q *InMemoryQueue[T]) Len() int {
	return len(q.items)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
