package metrics

import (
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by perfdash.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Consolidation
	consolidations       *prometheus.CounterVec
	consolidationLatency *prometheus.HistogramVec
	fallbacks            *prometheus.CounterVec
	invalidValues        *prometheus.CounterVec

	// Datasets
	datasetReloads        *prometheus.CounterVec
	datasetReloadDuration prometheus.Histogram
	datasetRecords        *prometheus.GaugeVec
	datasetPlayers        prometheus.Gauge

	// Chart cache
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	cacheEntries   prometheus.Gauge

	// Cache warm-up
	warmQueueSize   prometheus.Gauge
	warmQueueCap    prometheus.Gauge
	warmJobs        *prometheus.CounterVec
	warmJobDuration prometheus.Histogram
	warmWorkers     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Configure rebuilds the global collectors on a fresh registry with opts and
// returns that registry. Call it once at startup, before handlers read
// GetRegistry and before any goroutine records metrics.
func Configure(opts ...Option) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(slices.Clip(opts), WithRegistry(reg))...)
	customRegistry = reg
	return reg
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "perfdash",
		subsystem:        "dashboard",
		histogramBuckets: DefaultLatencyBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.consolidations = auto.NewCounterVec(
		m.counterOpts("consolidations_total", "Series consolidations by granularity and data type"),
		[]string{"granularity", "data_type"},
	)
	m.consolidationLatency = auto.NewHistogramVec(
		m.histogramOpts("consolidation_latency_milliseconds", "Time spent consolidating one chart"),
		[]string{"granularity"},
	)
	m.fallbacks = auto.NewCounterVec(
		m.counterOpts("granularity_fallbacks_total", "Requests served at daily resolution because the granularity was unknown"),
		[]string{"granularity"},
	)
	m.invalidValues = auto.NewCounterVec(
		m.counterOpts("invalid_values_total", "Metric values that failed to parse during aggregation"),
		[]string{"data_type"},
	)

	m.datasetReloads = auto.NewCounterVec(
		m.counterOpts("dataset_reloads_total", "Dataset reload attempts by outcome"),
		[]string{"status"},
	)
	m.datasetReloadDuration = auto.NewHistogram(
		m.histogramOpts("dataset_reload_duration_milliseconds", "Time spent loading all dataset files"),
	)
	m.datasetRecords = auto.NewGaugeVec(
		m.gaugeOpts("dataset_records", "Records currently loaded per dataset"),
		[]string{"dataset"},
	)
	m.datasetPlayers = auto.NewGauge(m.gaugeOpts("dataset_players", "Distinct players across force plate and tracking data"))

	m.cacheHits = auto.NewCounter(m.counterOpts("chart_cache_hits_total", "Chart cache hits"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("chart_cache_misses_total", "Chart cache misses"))
	m.cacheEvictions = auto.NewCounter(m.counterOpts("chart_cache_evictions_total", "Charts evicted to respect the cache bound"))
	m.cacheEntries = auto.NewGauge(m.gaugeOpts("chart_cache_entries", "Charts currently cached"))

	m.warmQueueSize = auto.NewGauge(m.gaugeOpts("warm_queue_size", "Chart warm-up jobs waiting in the queue"))
	m.warmQueueCap = auto.NewGauge(m.gaugeOpts("warm_queue_capacity", "Chart warm-up queue capacity"))
	m.warmJobs = auto.NewCounterVec(
		m.counterOpts("warm_jobs_total", "Chart warm-up jobs by outcome"),
		[]string{"status"},
	)
	m.warmJobDuration = auto.NewHistogram(
		m.histogramOpts("warm_job_duration_milliseconds", "Time spent on one chart warm-up job"),
	)
	m.warmWorkers = auto.NewGauge(m.gaugeOpts("warm_workers", "Running chart warm-up workers"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of running goroutines"))
}

// RecordConsolidation counts one consolidation and its latency.
func RecordConsolidation(granularity, dataType string, latencyMs float64) {
	globalManager.consolidations.WithLabelValues(granularity, dataType).Inc()
	globalManager.consolidationLatency.WithLabelValues(granularity).Observe(latencyMs)
}

// RecordGranularityFallback counts a request for an unknown granularity.
func RecordGranularityFallback(granularity string) {
	globalManager.fallbacks.WithLabelValues(granularity).Inc()
}

// RecordInvalidValues adds n unparseable metric values.
func RecordInvalidValues(dataType string, n int) {
	if n <= 0 {
		return
	}
	globalManager.invalidValues.WithLabelValues(dataType).Add(float64(n))
}

// RecordDatasetReload counts a reload attempt; status is "ok" or "error".
func RecordDatasetReload(status string, durationMs float64) {
	globalManager.datasetReloads.WithLabelValues(status).Inc()
	globalManager.datasetReloadDuration.Observe(durationMs)
}

// UpdateDatasetRecords sets the record count for a dataset.
func UpdateDatasetRecords(dataset string, n int) {
	globalManager.datasetRecords.WithLabelValues(dataset).Set(float64(n))
}

// UpdateDatasetPlayers sets the number of distinct players.
func UpdateDatasetPlayers(n int) {
	globalManager.datasetPlayers.Set(float64(n))
}

// RecordCacheHit counts a chart cache hit.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss counts a chart cache miss.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// RecordCacheEviction counts an evicted chart.
func RecordCacheEviction() { globalManager.cacheEvictions.Inc() }

// UpdateCacheEntries sets the number of cached charts.
func UpdateCacheEntries(n int) { globalManager.cacheEntries.Set(float64(n)) }

// UpdateWarmQueue sets the warm-up queue length and capacity.
func UpdateWarmQueue(size, capacity int) {
	globalManager.warmQueueSize.Set(float64(size))
	globalManager.warmQueueCap.Set(float64(capacity))
}

// RecordWarmJob counts a warm-up job. status is one of "enqueued",
// "dropped", "done" or "failed".
func RecordWarmJob(status string) {
	globalManager.warmJobs.WithLabelValues(status).Inc()
}

// RecordWarmJobDuration observes one processed warm-up job.
func RecordWarmJobDuration(ms float64) {
	globalManager.warmJobDuration.Observe(ms)
}

// UpdateWarmWorkers sets the number of running warm-up workers.
func UpdateWarmWorkers(n int) {
	globalManager.warmWorkers.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordError counts an error for a component.
func RecordError(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
