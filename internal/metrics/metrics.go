package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Queue metrics
var (
	TasksEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_tasks_enqueued_total",
			Help: "Total number of tasks written to the durable queue",
		},
		[]string{"type"},
	)

	TasksCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_tasks_completed_total",
			Help: "Total number of tasks marked complete",
		},
		[]string{"type", "status"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_queue_depth",
			Help: "Number of tasks buffered for delivery",
		},
	)

	QueueCleanupRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_pipeline_queue_cleanup_runs_total",
			Help: "Total number of WAL compaction runs",
		},
	)

	QueueWALSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_queue_wal_size_bytes",
			Help: "Size of the task WAL file in bytes",
		},
	)
)

// Worker metrics
var (
	WorkersBusy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_workers_busy",
			Help: "Number of workers currently executing a task",
		},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_task_duration_seconds",
			Help:    "Time spent executing a single task",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"type"},
	)
)

// Extraction metrics
var (
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_extractions_total",
			Help: "Total number of metadata extraction attempts",
		},
		[]string{"asset_type", "status"},
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_extraction_duration_seconds",
			Help:    "Duration of exiftool metadata extraction",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
	)
)

// Storage metrics
var (
	AssetsStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_assets_stored_total",
			Help: "Total number of assets placed into repository storage",
		},
		[]string{"asset_type"},
	)

	DuplicateAssetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_pipeline_duplicate_assets_total",
			Help: "Total number of uploads deduplicated by content hash",
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_memory_paused",
			Help: "1 while processing is paused for memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_pipeline_memory_gc_pauses_total",
			Help: "Total number of forced GC runs triggered by memory pressure",
		},
	)
)

// Filesystem retry metrics, labeled by operation (stat, open) and volume
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that exhausted their retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_filesystem_retry_duration_seconds",
			Help:    "Total duration of a filesystem operation including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)
