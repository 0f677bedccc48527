// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/assay/internal/adapters/repository"
	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/internal/domain/scoring"
	"github.com/okian/assay/pkg/logger"
	"github.com/okian/assay/pkg/metrics"
)

const (
	tracerName             = "github.com/okian/assay/internal/app"
	defaultSuggestDistance = 2
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the reporting dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	owned  bool // store was opened by Start and is closed by Stop
	scorer *scoring.Scorer
	tracer trace.Tracer

	// Configuration
	driver            string
	dsn               string
	storeOpts         []repository.Option
	seedFile          string
	seed              *dataset.Dataset
	lookupConcurrency int
	suggestDistance   int

	// State
	started       bool
	stopCollector context.CancelFunc
	reportsBuilt  atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects an already opened store. Stop does not close it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStoreDriver selects the backend opened by Start when no store is injected.
func WithStoreDriver(driver, dsn string, opts ...repository.Option) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = driver
			s.dsn = dsn
			s.storeOpts = opts
		}
	}
}

// WithSeedFile imports a YAML dataset on Start.
func WithSeedFile(path string) Option {
	return func(s *Service) {
		s.seedFile = path
	}
}

// WithSeed imports an in-memory dataset on Start.
func WithSeed(d *dataset.Dataset) Option {
	return func(s *Service) {
		s.seed = d
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScorer sets the scoring ladder used for option points in reports.
func WithScorer(scorer *scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithLookupConcurrency caps parallel store lookups per request.
func WithLookupConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lookupConcurrency = n
		}
	}
}

// WithSuggestDistance sets the max edit distance for search suggestions; 0 disables them.
func WithSuggestDistance(d int) Option {
	return func(s *Service) {
		if d >= 0 {
			s.suggestDistance = d
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver:            repository.DriverMemory,
		scorer:            scoring.NewScorer(),
		tracer:            otel.Tracer(tracerName),
		lookupConcurrency: runtime.NumCPU() * 2,
		suggestDistance:   defaultSuggestDistance,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store if needed, imports seed data and starts the runtime
// metrics sampler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting report service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.driver, s.dsn, s.storeOpts...)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		s.store = store
		s.owned = true
		s.logger.Info(ctx, "store opened", logger.String("driver", s.driver))
	}

	if err := s.importSeeds(ctx); err != nil {
		if s.owned {
			_ = s.store.Close()
			s.store = nil
			s.owned = false
		}
		return fmt.Errorf("start: %w", err)
	}

	collectCtx, cancel := context.WithCancel(context.Background())
	s.stopCollector = cancel
	go func() {
		_ = metrics.CollectRuntime(collectCtx)
	}()

	s.started = true
	s.logger.Info(ctx, "report service started",
		logger.String("driver", s.driver),
		logger.Int("lookupConcurrency", s.lookupConcurrency),
		logger.Float64("singleTopScore", s.scorer.TopScore()),
	)

	return nil
}

func (s *Service) importSeeds(ctx context.Context) error {
	var seeds []*dataset.Dataset
	if s.seedFile != "" {
		d, err := dataset.Load(s.seedFile)
		if err != nil {
			return fmt.Errorf("seed %s: %w", s.seedFile, err)
		}
		seeds = append(seeds, d)
	}
	if s.seed != nil {
		if err := s.seed.Validate(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		seeds = append(seeds, s.seed)
	}
	if len(seeds) == 0 {
		return nil
	}

	imp, ok := s.store.(repository.Importer)
	if !ok {
		return fmt.Errorf("seed: store %T cannot import", s.store)
	}
	for _, d := range seeds {
		if err := imp.Import(ctx, d); err != nil {
			return fmt.Errorf("seed import: %w", err)
		}
		s.logger.Info(ctx, "seed data imported",
			logger.Int("companies", len(d.Companies)),
			logger.Int("assessments", len(d.Assessments)),
		)
	}
	return nil
}

// Stop releases the store when the service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping report service...")

	if s.stopCollector != nil {
		s.stopCollector()
		s.stopCollector = nil
	}

	if s.owned && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store failed", logger.Error(err))
		}
		s.store = nil
		s.owned = false
	}

	s.started = false
	s.logger.Info(context.Background(), "report service stopped")
}

// backend returns the active store or ErrNotStarted.
func (s *Service) backend() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":           s.started,
		"storeDriver":       s.driverName(),
		"lookupConcurrency": s.lookupConcurrency,
		"suggestDistance":   s.suggestDistance,
		"singleTopScore":    s.scorer.TopScore(),
		"reportsBuilt":      s.reportsBuilt.Load(),
	}
}

func (s *Service) driverName() string {
	if s.store != nil && !s.owned {
		return fmt.Sprintf("%T", s.store)
	}
	return s.driver
}
