// Package metrics provides Prometheus metrics for the jobguard inference service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction paths used as label values.
const (
	PathSingle = "single"
	PathBatch  = "batch"
)

// batchSizeBuckets spans single requests up to the default batch cap.
var batchSizeBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // static buckets

// probabilityBuckets splits [0,1] into tenths.
var probabilityBuckets = prometheus.LinearBuckets(0.1, 0.1, 10) //nolint:gochecknoglobals // static buckets

// Manager manages all Prometheus metrics for the jobguard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Inference Metrics
	predictions       *prometheus.CounterVec
	predictionErrors  *prometheus.CounterVec
	inferenceLatency  *prometheus.HistogramVec
	batchSize         prometheus.Histogram
	fraudProbability  prometheus.Histogram
	modelLoaded       prometheus.Gauge
	modelInfo         *prometheus.GaugeVec
	modelLoadDuration prometheus.Gauge

	// Queue Metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueRejected    *prometheus.CounterVec
	queueWaitLatency prometheus.Histogram

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	workerTasksAbandoned    prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jobguard",
		subsystem:        "inference",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
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

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Total number of postings classified, by path and predicted label"),
		[]string{"path", "label"},
	)
	m.predictionErrors = auto.NewCounterVec(
		m.counterOpts("prediction_errors_total", "Total number of failed prediction requests, by path and error kind"),
		[]string{"path", "kind"},
	)
	m.inferenceLatency = auto.NewHistogramVec(
		m.histogramOpts("latency_milliseconds", "End-to-end inference latency per request in milliseconds", nil),
		[]string{"path"},
	)
	m.batchSize = auto.NewHistogram(
		m.histogramOpts("batch_size", "Number of postings per batch request", batchSizeBuckets),
	)
	m.fraudProbability = auto.NewHistogram(
		m.histogramOpts("fraud_probability", "Distribution of predicted fraud probabilities", probabilityBuckets),
	)
	m.modelLoaded = auto.NewGauge(m.gaugeOpts("model_loaded", "1 when a model artifact is loaded and serving"))
	m.modelInfo = auto.NewGaugeVec(
		m.gaugeOpts("model_info", "Loaded model artifact identity; value is always 1"),
		[]string{"name", "version", "classifier"},
	)
	m.modelLoadDuration = auto.NewGauge(m.gaugeOpts("model_load_duration_milliseconds", "Time taken to load the model artifact"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of inference tasks waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of tasks enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of tasks dequeued"))
	m.queueRejected = auto.NewCounterVec(
		m.counterOpts("queue_rejected_total", "Total number of tasks rejected by the queue, by reason"),
		[]string{"reason"},
	)
	m.queueWaitLatency = auto.NewHistogram(
		m.histogramOpts("queue_wait_milliseconds", "Time tasks spent queued before a worker picked them up", nil),
	)

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of inference workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of workers currently running inference"))
	m.workerIdleCount = auto.NewGauge(m.gaugeOpts("worker_idle_count", "Number of idle workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Worker processing latency per task in milliseconds", nil),
	)
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of tasks that failed inside a worker"))
	m.workerTasksAbandoned = auto.NewCounter(
		m.counterOpts("worker_tasks_abandoned_total", "Tasks skipped because the caller gave up before processing"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Inference Metrics Functions.

// RecordPrediction counts one classified posting and observes its probability.
func RecordPrediction(path string, fraudulent bool, probability float64) {
	l := "legitimate"
	if fraudulent {
		l = "fraudulent"
	}
	globalManager.predictions.WithLabelValues(path, l).Inc()
	globalManager.fraudProbability.Observe(probability)
}

// RecordPredictionError counts a failed prediction request.
func RecordPredictionError(path, kind string) {
	globalManager.predictionErrors.WithLabelValues(path, kind).Inc()
}

// RecordInferenceLatency records end-to-end latency of one request.
func RecordInferenceLatency(path string, latencyMs float64) {
	globalManager.inferenceLatency.WithLabelValues(path).Observe(latencyMs)
}

// RecordBatchSize observes the number of postings in a batch request.
func RecordBatchSize(n int) {
	globalManager.batchSize.Observe(float64(n))
}

// UpdateModelLoaded sets the model loaded gauge.
func UpdateModelLoaded(loaded bool) {
	v := 0.0
	if loaded {
		v = 1
	}
	globalManager.modelLoaded.Set(v)
}

// UpdateModelInfo publishes the loaded artifact identity.
func UpdateModelInfo(name, version, classifier string) {
	globalManager.modelInfo.Reset()
	globalManager.modelInfo.WithLabelValues(name, version, classifier).Set(1)
}

// UpdateModelLoadDuration records how long the artifact took to load.
func UpdateModelLoadDuration(ms float64) {
	globalManager.modelLoadDuration.Set(ms)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueRejected counts a task the queue refused ("full" or "closed").
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// RecordQueueWaitLatency records how long a task waited before processing.
func RecordQueueWaitLatency(latencyMs float64) {
	globalManager.queueWaitLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerTaskAbandoned counts a task skipped because its caller left.
func RecordWorkerTaskAbandoned() {
	globalManager.workerTasksAbandoned.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
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

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
