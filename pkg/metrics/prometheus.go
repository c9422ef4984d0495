// Package metrics provides Prometheus metrics for the pointbot service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the pointbot service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core business metrics - what really matters for a points bot
	messagesScored  prometheus.Counter
	messagesSkipped *prometheus.CounterVec
	pointsAwarded   prometheus.Counter

	// Scheduler metrics
	rolloverRuns        prometheus.Counter
	rolloverErrors      prometheus.Counter
	rolloverUsers       prometheus.Counter
	multiplierRefreshes prometheus.Counter

	// Command metrics
	commandInvocations *prometheus.CounterVec

	// Store metrics
	storeQueryLatency prometheus.Histogram
	storeWriteLatency prometheus.Histogram
	storeErrors       prometheus.Counter

	// Queue metrics - message queue performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics - processing performance
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Gateway state metrics
	guildCount   prometheus.Gauge
	trackedUsers prometheus.Gauge
	cooldownSize prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var (
	defaultRegistry = prometheus.NewRegistry()
	defaultManager  *Manager
)

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	defaultManager = NewManager(WithPrometheusRegistry(defaultRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pointbot",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto(m.registry)

	m.messagesScored = factory.counter(m.opts("messages_scored_total", "Messages that passed all preconditions and were enqueued for scoring."))
	m.messagesSkipped = factory.counterVec(m.opts("messages_skipped_total", "Messages skipped before scoring, by reason."), []string{"reason"})
	m.pointsAwarded = factory.counter(m.opts("points_awarded_total", "Total points written to user records."))

	m.rolloverRuns = factory.counter(m.opts("rollover_runs_total", "Daily rollover executions."))
	m.rolloverErrors = factory.counter(m.opts("rollover_errors_total", "Store errors observed during rollover."))
	m.rolloverUsers = factory.counter(m.opts("rollover_users_total", "User rows rewritten by rollovers."))
	m.multiplierRefreshes = factory.counter(m.opts("multiplier_refreshes_total", "Guild multiplier refresh passes."))

	m.commandInvocations = factory.counterVec(m.opts("command_invocations_total", "Slash command invocations, by command."), []string{"command"})

	m.storeQueryLatency = factory.histogram(m.histOpts("store_query_latency_ms", "Store read latency in milliseconds."))
	m.storeWriteLatency = factory.histogram(m.histOpts("store_write_latency_ms", "Store write latency in milliseconds."))
	m.storeErrors = factory.counter(m.opts("store_errors_total", "Store operations that returned an error."))

	m.queueSize = factory.gauge(m.opts("queue_size", "Current number of queued score events."))
	m.queueCapacity = factory.gauge(m.opts("queue_capacity", "Configured score event queue capacity."))
	m.queueUtilization = factory.gauge(m.opts("queue_utilization", "Queue fill ratio in [0,1]."))
	m.queueEnqueues = factory.counter(m.opts("queue_enqueues_total", "Successful enqueues."))
	m.queueDequeues = factory.counter(m.opts("queue_dequeues_total", "Successful dequeues."))
	m.queueEnqueueErrors = factory.counter(m.opts("queue_enqueue_errors_total", "Enqueues rejected by backpressure or shutdown."))

	m.workerActiveCount = factory.gauge(m.opts("worker_active_count", "Number of running score workers."))
	m.workerProcessingLatency = factory.histogram(m.histOpts("worker_processing_latency_ms", "End-to-end score event processing latency in milliseconds."))
	m.workerErrors = factory.counter(m.opts("worker_errors_total", "Score events abandoned due to errors."))

	m.guildCount = factory.gauge(m.opts("guild_count", "Guilds currently joined by the bot."))
	m.trackedUsers = factory.gauge(m.opts("tracked_users", "User rows currently in the store."))
	m.cooldownSize = factory.gauge(m.opts("cooldown_size", "Users currently in the scoring cooldown set."))

	m.httpRequests = factory.counterVec(m.opts("http_requests_total", "HTTP requests, by endpoint, method and status."), []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.histogramVec(m.histOpts("http_request_duration_ms", "HTTP request duration in milliseconds."), []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.gauge(m.opts("system_memory_bytes", "Heap bytes currently allocated."))
	m.systemGoroutineCount = factory.gauge(m.opts("system_goroutines", "Number of live goroutines."))
	m.systemGCPauseTime = factory.histogram(m.histOpts("system_gc_pause_ms", "Average GC pause time in milliseconds."))
}

// opts builds counter/gauge options with the manager's namespace applied.
func (m *Manager) opts(name, help string) prometheus.Opts {
	return prometheus.Opts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) histOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}
}

// factory wraps a registerer so metric construction stays terse above.
type factory struct {
	r prometheus.Registerer
}

func promauto(r prometheus.Registerer) factory { return factory{r: r} }

func (f factory) counter(o prometheus.Opts) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts(o))
	f.r.MustRegister(c)
	return c
}

func (f factory) counterVec(o prometheus.Opts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts(o), labels)
	f.r.MustRegister(c)
	return c
}

func (f factory) gauge(o prometheus.Opts) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts(o))
	f.r.MustRegister(g)
	return g
}

func (f factory) histogram(o prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(o)
	f.r.MustRegister(h)
	return h
}

func (f factory) histogramVec(o prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(o, labels)
	f.r.MustRegister(h)
	return h
}

// Package-level helpers delegating to the default manager.

// RecordMessageScored increments the scored message counter.
func RecordMessageScored() { defaultManager.messagesScored.Inc() }

// RecordMessageSkipped increments the skipped message counter for a reason.
func RecordMessageSkipped(reason string) {
	defaultManager.messagesSkipped.WithLabelValues(reason).Inc()
}

// RecordPointsAwarded adds awarded points to the running total.
func RecordPointsAwarded(points int) { defaultManager.pointsAwarded.Add(float64(points)) }

// RecordRolloverRun increments the rollover execution counter.
func RecordRolloverRun() { defaultManager.rolloverRuns.Inc() }

// RecordRolloverError increments the rollover error counter.
func RecordRolloverError() { defaultManager.rolloverErrors.Inc() }

// RecordRolloverUsers adds the number of user rows rewritten by a rollover.
func RecordRolloverUsers(n int) { defaultManager.rolloverUsers.Add(float64(n)) }

// RecordMultiplierRefresh increments the multiplier refresh counter.
func RecordMultiplierRefresh() { defaultManager.multiplierRefreshes.Inc() }

// RecordCommand increments the invocation counter for a slash command.
func RecordCommand(name string) { defaultManager.commandInvocations.WithLabelValues(name).Inc() }

// RecordStoreQueryLatency observes a store read latency in milliseconds.
func RecordStoreQueryLatency(latencyMs float64) { defaultManager.storeQueryLatency.Observe(latencyMs) }

// RecordStoreWriteLatency observes a store write latency in milliseconds.
func RecordStoreWriteLatency(latencyMs float64) { defaultManager.storeWriteLatency.Observe(latencyMs) }

// RecordStoreError increments the store error counter.
func RecordStoreError() { defaultManager.storeErrors.Inc() }

// UpdateQueueSize sets the current queue size gauge.
func UpdateQueueSize(size int) { defaultManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) { defaultManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue fill ratio gauge.
func UpdateQueueUtilization(utilization float64) { defaultManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the successful enqueue counter.
func RecordQueueEnqueue() { defaultManager.queueEnqueues.Inc() }

// RecordQueueDequeue increments the successful dequeue counter.
func RecordQueueDequeue() { defaultManager.queueDequeues.Inc() }

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() { defaultManager.queueEnqueueErrors.Inc() }

// UpdateWorkerActiveCount sets the running worker gauge.
func UpdateWorkerActiveCount(count int) { defaultManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerProcessingLatency observes an event processing latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	defaultManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the abandoned event counter.
func RecordWorkerError() { defaultManager.workerErrors.Inc() }

// UpdateGuildCount sets the joined guild gauge.
func UpdateGuildCount(count int) { defaultManager.guildCount.Set(float64(count)) }

// UpdateTrackedUsers sets the stored user row gauge.
func UpdateTrackedUsers(count int) { defaultManager.trackedUsers.Set(float64(count)) }

// UpdateCooldownSize sets the cooldown set gauge.
func UpdateCooldownSize(size int) { defaultManager.cooldownSize.Set(float64(size)) }

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) { defaultManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the live goroutine gauge.
func UpdateSystemGoroutineCount(count int) { defaultManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime observes an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { defaultManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry backing the default manager.
func GetRegistry() *prometheus.Registry {
	return defaultRegistry
}
