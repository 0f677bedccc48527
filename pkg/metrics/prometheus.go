// Package metrics provides Prometheus metrics for the assay reporting service.
package metrics

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
	nanosPerMilli          = 1e6
)

// Manager manages all Prometheus metrics for the reporting service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Reporting metrics
	aggregationLatency    prometheus.Histogram
	assessmentsAggregated prometheus.Counter
	reportQuestions       prometheus.Histogram
	reportsBuilt          *prometheus.CounterVec

	// Store metrics
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
	storeImported     *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram

	sampleMu  sync.Mutex
	lastNumGC uint32
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "assay",
		subsystem:        "report",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.aggregationLatency = auto.NewHistogram(m.histogram(
		"aggregation_latency_milliseconds",
		"Histogram of response aggregation latency in milliseconds",
		m.histogramBuckets,
	))

	m.assessmentsAggregated = auto.NewCounter(m.counter(
		"assessments_aggregated_total",
		"Total number of assessments folded into aggregate reports",
	))

	m.reportQuestions = auto.NewHistogram(m.histogram(
		"questions_per_report",
		"Number of distinct questions per aggregate report",
		prometheus.ExponentialBuckets(1, 2, 8),
	))

	m.reportsBuilt = auto.NewCounterVec(
		m.counter("reports_built_total", "Total number of reports built by kind"),
		[]string{"kind"},
	)

	m.storeQueryLatency = auto.NewHistogramVec(
		m.histogram("store_query_latency_milliseconds", "Store query latency in milliseconds", m.histogramBuckets),
		[]string{"driver", "operation"},
	)

	m.storeErrors = auto.NewCounterVec(
		m.counter("store_errors_total", "Total number of failed store operations"),
		[]string{"driver", "operation"},
	)

	m.storeImported = auto.NewCounterVec(
		m.counter("store_imported_records_total", "Total number of records imported into the store"),
		[]string{"driver", "entity"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRateLimited = auto.NewCounterVec(
		m.counter("http_rate_limited_total", "Total number of requests rejected by the rate limiter"),
		[]string{"endpoint"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counter("errors_by_component_total", "Total number of errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counter("errors_by_endpoint_total", "Total number of errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes"))

	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Current number of goroutines"))

	m.systemGCPauseTime = auto.NewHistogram(m.histogram(
		"system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds",
		m.histogramBuckets,
	))
}

// sampleRuntime reads runtime stats into the system gauges. Only GC cycles
// completed since the previous sample are observed.
func (m *Manager) sampleRuntime() {
	m.sampleMu.Lock()
	defer m.sampleMu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.systemMemoryUsage.Set(float64(ms.HeapInuse))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))

	fresh := ms.NumGC - m.lastNumGC
	if fresh > uint32(len(ms.PauseNs)) {
		fresh = uint32(len(ms.PauseNs))
	}
	for i := uint32(0); i < fresh; i++ {
		idx := (ms.NumGC - i + uint32(len(ms.PauseNs)) - 1) % uint32(len(ms.PauseNs))
		m.systemGCPauseTime.Observe(float64(ms.PauseNs[idx]) / nanosPerMilli)
	}
	m.lastNumGC = ms.NumGC
}

// CollectRuntime samples runtime gauges every refresh interval until ctx is done.
func (m *Manager) CollectRuntime(ctx context.Context) error {
	m.sampleRuntime()

	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrCollectorStopped, ctx.Err())
		case <-ticker.C:
			m.sampleRuntime()
		}
	}
}

// Reporting Metrics Functions.

// RecordAggregation records one aggregate report build.
func RecordAggregation(assessments, questions int, latencyMs float64) {
	globalManager.aggregationLatency.Observe(latencyMs)
	globalManager.assessmentsAggregated.Add(float64(assessments))
	globalManager.reportQuestions.Observe(float64(questions))
	globalManager.reportsBuilt.WithLabelValues("aggregate").Inc()
}

// RecordReportBuilt increments the report counter for a non-aggregate kind.
func RecordReportBuilt(kind string) {
	globalManager.reportsBuilt.WithLabelValues(kind).Inc()
}

// Store Metrics Functions.

// RecordStoreQuery records the latency of a store operation.
func RecordStoreQuery(driver, operation string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(driver, operation).Observe(latencyMs)
}

// RecordStoreError increments the store error counter.
func RecordStoreError(driver, operation string) {
	globalManager.storeErrors.WithLabelValues(driver, operation).Inc()
}

// RecordStoreImport adds imported record counts for an entity.
func RecordStoreImport(driver, entity string, count int) {
	globalManager.storeImported.WithLabelValues(driver, entity).Add(float64(count))
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited increments the rate limiter rejection counter.
func RecordRateLimited(endpoint string) {
	globalManager.httpRateLimited.WithLabelValues(endpoint).Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// CollectRuntime runs the global manager's runtime sampler.
func CollectRuntime(ctx context.Context) error {
	return globalManager.CollectRuntime(ctx)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
