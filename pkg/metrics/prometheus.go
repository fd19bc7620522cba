// Package metrics provides Prometheus metrics for the Mergington activities service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration error reasons used as label values.
const (
	ReasonNotFound      = "not_found"
	ReasonDuplicate     = "duplicate"
	ReasonNotRegistered = "not_registered"
	ReasonFull          = "full"
	ReasonInvalidEmail  = "invalid_email"
	ReasonInternal      = "internal"
)

var knownReasons = map[string]struct{}{ //nolint:gochecknoglobals // label whitelist
	ReasonNotFound:      {},
	ReasonDuplicate:     {},
	ReasonNotRegistered: {},
	ReasonFull:          {},
	ReasonInvalidEmail:  {},
	ReasonInternal:      {},
}

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Registration metrics
	signups            prometheus.Counter
	unregistrations    prometheus.Counter
	registrationErrors *prometheus.CounterVec
	activitiesTotal    prometheus.Gauge
	participants       *prometheus.GaugeVec

	// Journal pipeline metrics
	journalEvents  prometheus.Counter
	journalDropped prometheus.Counter
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	workerCount    prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "mergington",
		subsystem:        "activities",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.signups = m.counter("signups_total", "Total number of successful activity sign-ups")
	m.unregistrations = m.counter("unregistrations_total", "Total number of successful un-registrations")
	m.registrationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "registration_errors_total",
		Help:        "Rejected sign-up and unregister requests by operation and reason",
		ConstLabels: m.constLabels,
	}, []string{"operation", "reason"})
	m.activitiesTotal = m.gauge("activities_total", "Number of activities offered")
	m.participants = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "participants",
		Help:        "Current participant count per activity",
		ConstLabels: m.constLabels,
	}, []string{"activity"})

	m.journalEvents = m.counter("journal_events_total", "Registration events written to the journal")
	m.journalDropped = m.counter("journal_events_dropped_total", "Registration events dropped on queue backpressure")
	m.queueSize = m.gauge("queue_size", "Current size of the registration event queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the registration event queue")
	m.workerCount = m.gauge("worker_count", "Number of journal workers")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "HTTP error responses by endpoint, method and error type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordSignup increments the sign-up counter.
func (m *Manager) RecordSignup() { m.signups.Inc() }

// RecordUnregistration increments the un-registration counter.
func (m *Manager) RecordUnregistration() { m.unregistrations.Inc() }

// RecordRegistrationError counts a rejected mutation. Unknown reasons are
// folded into "internal" and reported through the returned error.
func (m *Manager) RecordRegistrationError(operation, reason string) error {
	if _, ok := knownReasons[reason]; !ok {
		m.registrationErrors.WithLabelValues(operation, ReasonInternal).Inc()
		return ErrUnknownReason
	}
	m.registrationErrors.WithLabelValues(operation, reason).Inc()
	return nil
}

// UpdateActivities sets the activities gauge.
func (m *Manager) UpdateActivities(count int) { m.activitiesTotal.Set(float64(count)) }

// UpdateParticipants sets the participant gauge for one activity.
func (m *Manager) UpdateParticipants(activity string, count int) {
	m.participants.WithLabelValues(activity).Set(float64(count))
}

// RecordJournalEvent increments the journal events counter.
func (m *Manager) RecordJournalEvent() { m.journalEvents.Inc() }

// RecordJournalDropped increments the dropped events counter.
func (m *Manager) RecordJournalDropped() { m.journalDropped.Inc() }

// UpdateQueueSize sets the queue size gauge.
func (m *Manager) UpdateQueueSize(size int) { m.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity gauge.
func (m *Manager) UpdateQueueCapacity(capacity int) { m.queueCapacity.Set(float64(capacity)) }

// UpdateWorkerCount sets the worker gauge.
func (m *Manager) UpdateWorkerCount(count int) { m.workerCount.Set(float64(count)) }

// RecordHTTPRequest records one served request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts an HTTP error response.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the memory gauge.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) { m.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func (m *Manager) UpdateSystemGoroutineCount(count int) {
	m.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) { m.systemGCPauseTime.Observe(pauseMs) }

// Package-level helpers delegate to the global manager.

// RecordSignup increments the global sign-up counter.
func RecordSignup() { globalManager.RecordSignup() }

// RecordUnregistration increments the global un-registration counter.
func RecordUnregistration() { globalManager.RecordUnregistration() }

// RecordRegistrationError counts a rejected mutation on the global manager.
func RecordRegistrationError(operation, reason string) error {
	return globalManager.RecordRegistrationError(operation, reason)
}

// UpdateActivities sets the global activities gauge.
func UpdateActivities(count int) { globalManager.UpdateActivities(count) }

// UpdateParticipants sets the global participant gauge for one activity.
func UpdateParticipants(activity string, count int) {
	globalManager.UpdateParticipants(activity, count)
}

// RecordJournalEvent increments the global journal events counter.
func RecordJournalEvent() { globalManager.RecordJournalEvent() }

// RecordJournalDropped increments the global dropped events counter.
func RecordJournalDropped() { globalManager.RecordJournalDropped() }

// UpdateQueueSize sets the global queue size gauge.
func UpdateQueueSize(size int) { globalManager.UpdateQueueSize(size) }

// UpdateQueueCapacity sets the global queue capacity gauge.
func UpdateQueueCapacity(capacity int) { globalManager.UpdateQueueCapacity(capacity) }

// UpdateWorkerCount sets the global worker gauge.
func UpdateWorkerCount(count int) { globalManager.UpdateWorkerCount(count) }

// RecordHTTPRequest records one served request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint counts an HTTP error response on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystemMemoryUsage sets the global memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }

// UpdateSystemGoroutineCount sets the global goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// RecordSystemGCPauseTime records GC pause time on the global manager.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.RecordSystemGCPauseTime(pauseMs) }

// Init rebuilds the global manager on a fresh registry with opts applied.
// Call it once at startup, before any handler captures GetRegistry.
func Init(opts ...Option) *prometheus.Registry {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
	return customRegistry
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
