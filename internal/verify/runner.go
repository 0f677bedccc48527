// Package verify replays the reports of a seed dataset against a running
// server and checks every answer against a locally computed aggregate.
package verify

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/assay/internal/adapters/mq/queue"
	"github.com/okian/assay/internal/adapters/mq/worker"
	service "github.com/okian/assay/internal/app"
	"github.com/okian/assay/internal/domain/report"
	"github.com/okian/assay/pkg/logger"
)

// ErrMismatch is returned by Run when at least one probe failed.
var ErrMismatch = errors.New("served reports differ from the dataset")

// Percentile positions for latency stats.
const (
	percentile50 = 50
	percentile95 = 95
)

type job struct {
	probe Probe
	round int
}

type runner struct {
	client *HTTPClient
	cfg    Config
	log    logger.Logger

	mu        sync.Mutex
	latencies []time.Duration
	failures  map[string]*Failure
	order     []string
}

// Run checks service health and then fetches every probe cfg.Rounds times
// through a worker pool. The summary is returned even when err is ErrMismatch.
func Run(ctx context.Context, cfg Config, probes []Probe) (Summary, error) {
	cfg.defaults()
	r := &runner{
		client:   newHTTPClient(cfg.BaseURL, cfg.Timeout),
		cfg:      cfg,
		log:      logger.Get(),
		failures: make(map[string]*Failure),
	}

	summary := Summary{Stats: Stats{StartTime: time.Now(), Probes: len(probes)}}

	r.log.Info(ctx, "starting report verification",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("probes", len(probes)),
		logger.Int("workers", cfg.Workers),
		logger.Int("rounds", cfg.Rounds),
		logger.Duration("timeout", cfg.Timeout))

	if err := r.checkHealth(ctx); err != nil {
		return summary, fmt.Errorf("service health check failed: %w", err)
	}

	jobs := queue.New[job](
		queue.WithCapacity(max(len(probes)*cfg.Rounds, 1)),
		queue.WithName("verify_queue"),
	)
	for round := range cfg.Rounds {
		for _, p := range probes {
			if err := jobs.Enqueue(ctx, job{probe: p, round: round}); err != nil {
				return summary, fmt.Errorf("enqueue probe %s: %w", p.OpAreaID, err)
			}
		}
	}

	pool := worker.NewPool[job](cfg.Workers, jobs, r.check,
		worker.WithName("verify"),
		worker.WithLogger(r.log),
	)
	pool.Start(ctx)
	if err := pool.Drain(ctx); err != nil {
		pool.Stop()
		return summary, fmt.Errorf("verification interrupted: %w", err)
	}

	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	summary.Passed = int(pool.Processed() - pool.Failed())
	summary.Failed = int(pool.Failed())

	r.mu.Lock()
	summary.Requests = len(r.latencies)
	summary.P50 = percentile(r.latencies, percentile50)
	summary.P95 = percentile(r.latencies, percentile95)
	for _, id := range r.order {
		summary.Failures = append(summary.Failures, *r.failures[id])
	}
	r.mu.Unlock()

	r.log.Info(ctx, "final statistics",
		logger.Int("probes", summary.Probes),
		logger.Int("requests", summary.Requests),
		logger.Int("passed", summary.Passed),
		logger.Int("failed", summary.Failed),
		logger.Duration("p50", summary.P50),
		logger.Duration("p95", summary.P95),
		logger.Duration("duration", summary.Duration))

	if summary.Failed > 0 {
		return summary, ErrMismatch
	}
	return summary, nil
}

func (r *runner) checkHealth(ctx context.Context) error {
	r.log.Info(ctx, "checking service health")
	if _, err := r.client.get(ctx, "/healthz"); err != nil {
		return err
	}
	r.log.Info(ctx, "service is healthy")
	return nil
}

// check is the worker handler for one probe.
func (r *runner) check(ctx context.Context, j job) error {
	p := j.probe
	var problems []string

	var view service.AggregateView
	if err := r.fetch(ctx, p.path()+"/aggregate", &view); err != nil {
		problems = append(problems, err.Error())
	} else {
		problems = append(problems, compareReports(p.Expected, view.AggregateReport)...)
	}

	var details service.OpAreaDetails
	if err := r.fetch(ctx, p.path(), &details); err != nil {
		problems = append(problems, err.Error())
	} else if len(details.Assessments) != len(p.AssessmentIDs) {
		problems = append(problems, fmt.Sprintf("assessment list: want %d, got %d", len(p.AssessmentIDs), len(details.Assessments)))
	}

	if len(p.AssessmentIDs) > 0 {
		id := p.AssessmentIDs[j.round%len(p.AssessmentIDs)]
		var av report.AssessmentView
		if err := r.fetch(ctx, p.path()+"/assessments/"+id, &av); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if r.cfg.Verbose {
		r.log.Info(ctx, "probe checked",
			logger.String("opAreaID", p.OpAreaID),
			logger.Int("round", j.round),
			logger.Int("problems", len(problems)))
	}

	if len(problems) == 0 {
		return nil
	}
	r.fail(p, problems)
	return fmt.Errorf("op area %s: %d problems", p.OpAreaID, len(problems))
}

func (r *runner) fetch(ctx context.Context, path string, v any) error {
	start := time.Now()
	err := r.client.getJSON(ctx, path, v)
	took := time.Since(start)

	r.mu.Lock()
	r.latencies = append(r.latencies, took)
	r.mu.Unlock()
	return err
}

// fail records problems once per operational area, whatever the round.
func (r *runner) fail(p Probe, problems []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.failures[p.OpAreaID]; ok {
		return
	}
	r.failures[p.OpAreaID] = &Failure{OpAreaID: p.OpAreaID, OpAreaName: p.OpAreaName, Problems: problems}
	r.order = append(r.order, p.OpAreaID)
}

// percentile returns the nearest-rank percentile of ds.
func percentile(ds []time.Duration, p int) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	sorted := slices.Clone(ds)
	slices.Sort(sorted)
	rank := (p*len(sorted) + 99) / 100
	return sorted[max(rank-1, 0)]
}
