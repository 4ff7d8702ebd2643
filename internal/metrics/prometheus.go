package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the rating pipeline

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betedge_api_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betedge_api_call_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Warehouse metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betedge_db_queries_total",
			Help: "Total number of warehouse queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betedge_db_query_duration_seconds",
			Help:    "Duration of warehouse queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "betedge_db_connections_active",
			Help: "Number of active warehouse connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "betedge_db_connections_idle",
			Help: "Number of idle warehouse connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betedge_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betedge_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betedge_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Pipeline metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betedge_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"domain", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "betedge_run_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"domain"},
	)

	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betedge_source_fetches_total",
			Help: "Total number of source adapter fetches",
		},
		[]string{"source", "status"},
	)

	SourceRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "betedge_source_records",
			Help: "Number of records returned by the last fetch of each source",
		},
		[]string{"source"},
	)

	ImputedCellsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betedge_imputed_cells_total",
			Help: "Total number of metric cells filled by imputation",
		},
		[]string{"domain", "metric"},
	)

	RowsRated = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "betedge_rows_rated",
			Help: "Number of rows rated by the last run",
		},
		[]string{"domain"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betedge_notifications_total",
			Help: "Total number of webhook notifications",
		},
		[]string{"status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betedge_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// Worker metrics
	WorkerLoopIterations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betedge_worker_loop_iterations_total",
			Help: "Total number of autopilot iterations",
		},
	)

	WorkerLoopDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "betedge_worker_loop_duration_seconds",
			Help:    "Duration of autopilot iterations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "betedge_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "betedge_last_successful_run_timestamp",
			Help: "Timestamp of last successful pipeline run",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a warehouse query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordRun records a pipeline run
func RecordRun(domain, status string, duration float64) {
	RunsTotal.WithLabelValues(domain, status).Inc()
	RunDuration.WithLabelValues(domain).Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordSourceFetch records one adapter fetch
func RecordSourceFetch(source, status string, records int) {
	SourceFetchesTotal.WithLabelValues(source, status).Inc()
	SourceRecords.WithLabelValues(source).Set(float64(records))
}

// RecordImputation records one imputed cell
func RecordImputation(domain, metric string) {
	ImputedCellsTotal.WithLabelValues(domain, metric).Inc()
}

// UpdateRowsRated sets the row count of the last run
func UpdateRowsRated(domain string, rows int) {
	RowsRated.WithLabelValues(domain).Set(float64(rows))
}

// RecordNotification records a webhook post
func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates warehouse connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// RecordWorkerIteration records an autopilot iteration
func RecordWorkerIteration(duration float64) {
	WorkerLoopIterations.Inc()
	WorkerLoopDuration.Observe(duration)
}
