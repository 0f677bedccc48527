// Package worker runs a pool of goroutines that drain a job queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/okian/assay/pkg/logger"
	"github.com/okian/assay/pkg/metrics"
)

// Handler processes a single job. Errors are logged and counted; they do
// not stop the worker.
type Handler[T any] func(ctx context.Context, job T) error

// Source defines how workers receive jobs.
type Source[T any] interface {
	Dequeue(ctx context.Context) <-chan T
}

// Worker processes jobs from a Source until it is drained or stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)
}

// InMemoryWorker implements Worker for one goroutine of a Pool.
type InMemoryWorker[T any] struct {
	source Source[T]
	handle Handler[T]
	name   string
	pool   *Pool[T]

	done chan struct{}

	logger logger.Logger
}

// Run starts the worker loop.
func (w *InMemoryWorker[T]) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.pool.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				// Source drained
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *InMemoryWorker[T]) process(ctx context.Context, job T) {
	defer w.pool.processed.Add(1)

	if err := w.handle(ctx, job); err != nil {
		w.pool.failed.Add(1)
		metrics.RecordErrorByComponent("worker", "handler_error")
		w.logger.Debug(ctx, "job failed", logger.String("worker", w.name), logger.Error(err))
	}
}

// Pool manages multiple workers sharing one Source.
type Pool[T any] struct {
	workers []*InMemoryWorker[T]
	source  Source[T]

	shutdown     chan struct{}
	shutdownOnce sync.Once

	processed atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. workerCount < 1 uses
// runtime.NumCPU().
func NewPool[T any](workerCount int, source Source[T], handle Handler[T], opts ...Option) *Pool[T] {
	o := options{name: "worker"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool[T]{
		workers:  make([]*InMemoryWorker[T], workerCount),
		source:   source,
		shutdown: make(chan struct{}),
		logger:   o.logger.Named(o.name + "-pool"),
	}
	for i := range workerCount {
		p.workers[i] = &InMemoryWorker[T]{
			source: source,
			handle: handle,
			name:   o.name + "-" + strconv.Itoa(i),
			pool:   p,
			done:   make(chan struct{}),
			logger: o.logger.Named(o.name + "-" + strconv.Itoa(i)),
		}
	}
	return p
}

// Start starts all workers in the pool.
func (p *Pool[T]) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Debug(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Wait blocks until every worker has exited or ctx is done.
func (p *Pool[T]) Wait(ctx context.Context) error {
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker wait timed out", logger.Int("worker_id", i))
			return fmt.Errorf("wait for workers: %w", ctx.Err())
		}
	}
	return nil
}

// Drain closes the source when it supports it and waits for the workers to
// finish the jobs already queued.
func (p *Pool[T]) Drain(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	return p.Wait(ctx)
}

// Stop signals every worker to return after its current job.
func (p *Pool[T]) Stop() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })
}

// Processed returns how many jobs were handled, failed ones included.
func (p *Pool[T]) Processed() int64 { return p.processed.Load() }

// Failed returns how many jobs returned an error.
func (p *Pool[T]) Failed() int64 { return p.failed.Load() }

// Size returns the number of workers.
func (p *Pool[T]) Size() int { return len(p.workers) }
