// Package metrics provides Prometheus metrics for the slicktrace analysis service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Pipeline metrics
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	stageDuration    *prometheus.HistogramVec
	recordsIngested  *prometheus.CounterVec
	recordsDropped   *prometheus.CounterVec
	candidatesLast   prometheus.Gauge
	incidentsLast    prometheus.Gauge
	suspectsLast     prometheus.Gauge
	windowHoursLast  prometheus.Gauge

	// Store and memo metrics
	cacheLookups   *prometheus.CounterVec
	cacheEntries   *prometheus.GaugeVec
	cacheEvictions *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global manager and the registry it is registered on. Both are replaced
// together by Configure.
var (
	global         atomic.Pointer[Manager]             //nolint:gochecknoglobals // singleton metrics manager
	customRegistry atomic.Pointer[prometheus.Registry] //nolint:gochecknoglobals // metrics registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	Configure()
}

// Configure rebuilds the global manager with opts on a fresh registry, so
// Go runtime collectors never appear. Call it before serving /healthz:
// handlers built earlier keep exposing the previous registry.
func Configure(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	m := NewManager(append(append([]Option{}, opts...), WithPrometheusRegistry(reg))...)
	customRegistry.Store(reg)
	global.Store(m)
	return m
}

func current() *Manager { return global.Load() }

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "slicktrace",
		subsystem:        "analysis",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
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

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all metric definitions
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)
	msBuckets := []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

	m.pipelineRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pipeline_runs_total",
		Help:        "Pipeline runs by outcome",
		ConstLabels: labels,
	}, []string{"status"})

	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pipeline_duration_milliseconds",
		Help:        "End-to-end pipeline duration in milliseconds",
		Buckets:     msBuckets,
		ConstLabels: labels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Duration of a single pipeline stage in milliseconds",
		Buckets:     msBuckets,
		ConstLabels: labels,
	}, []string{"stage"})

	m.recordsIngested = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_ingested_total",
		Help:        "Records that survived normalization, by dataset",
		ConstLabels: labels,
	}, []string{"dataset"})

	m.recordsDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_dropped_total",
		Help:        "Records dropped during normalization, by dataset",
		ConstLabels: labels,
	}, []string{"dataset"})

	m.candidatesLast = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_candidates",
		Help:        "Incident candidates produced by the most recent run",
		ConstLabels: labels,
	})

	m.incidentsLast = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_unique_incidents",
		Help:        "Unique (vessel, spill) incidents produced by the most recent run",
		ConstLabels: labels,
	})

	m.suspectsLast = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_prime_suspects",
		Help:        "Spills with a prime suspect in the most recent run",
		ConstLabels: labels,
	})

	m.windowHoursLast = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_window_hours",
		Help:        "Causal window used by the most recent run",
		ConstLabels: labels,
	})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_lookups_total",
		Help:        "Store lookups by store and result",
		ConstLabels: labels,
	}, []string{"store", "result"})

	m.cacheEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_entries",
		Help:        "Entries currently held by each store",
		ConstLabels: labels,
	}, []string{"store"})

	m.cacheEvictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "cache_evictions_total",
		Help:        "Entries evicted from each store",
		ConstLabels: labels,
	}, []string{"store"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Errors by component and type",
		ConstLabels: labels,
	}, []string{"component", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_type_total",
		Help:        "Errors by type and severity",
		ConstLabels: labels,
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "Errors by HTTP endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Current heap allocation in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutine_count",
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
		ConstLabels: labels,
	})
}

// RecordPipelineRun counts a pipeline run with its outcome ("ok", "schema_error", ...).
func RecordPipelineRun(status string) {
	if !current().enabled {
		return
	}
	current().pipelineRuns.WithLabelValues(status).Inc()
}

// RecordPipelineDuration records an end-to-end pipeline duration in milliseconds.
func RecordPipelineDuration(ms float64) {
	if !current().enabled {
		return
	}
	current().pipelineDuration.Observe(ms)
}

// RecordStageDuration records a stage ("normalize_spills", "match", ...) duration in milliseconds.
func RecordStageDuration(stage string, ms float64) {
	if !current().enabled {
		return
	}
	current().stageDuration.WithLabelValues(stage).Observe(ms)
}

// RecordRecords adds ingested and dropped record counts for a dataset.
func RecordRecords(dataset string, ingested, dropped int) {
	if !current().enabled {
		return
	}
	if ingested > 0 {
		current().recordsIngested.WithLabelValues(dataset).Add(float64(ingested))
	}
	if dropped > 0 {
		current().recordsDropped.WithLabelValues(dataset).Add(float64(dropped))
	}
}

// UpdateLastRun publishes the result cardinalities of the most recent run.
func UpdateLastRun(windowHours, candidates, incidents, suspects int) {
	if !current().enabled {
		return
	}
	current().windowHoursLast.Set(float64(windowHours))
	current().candidatesLast.Set(float64(candidates))
	current().incidentsLast.Set(float64(incidents))
	current().suspectsLast.Set(float64(suspects))
}

// RecordCacheLookup counts a hit or miss on a store.
func RecordCacheLookup(store string, hit bool) {
	if !current().enabled {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	current().cacheLookups.WithLabelValues(store, result).Inc()
}

// UpdateCacheEntries sets the number of entries held by a store.
func UpdateCacheEntries(store string, n int) {
	if !current().enabled {
		return
	}
	current().cacheEntries.WithLabelValues(store).Set(float64(n))
}

// RecordCacheEviction counts an eviction from a store.
func RecordCacheEviction(store string) {
	if !current().enabled {
		return
	}
	current().cacheEvictions.WithLabelValues(store).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	current().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	current().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, errorType string) {
	current().errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	current().errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	current().errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	current().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	current().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	current().systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval returns how often gauges are expected to be refreshed.
func RefreshInterval() time.Duration {
	return current().refreshInterval
}

// GetRegistry returns the custom registry all metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry.Load()
}
