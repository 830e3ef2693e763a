// Package metrics provides Prometheus metrics for the challwatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Sync engine
	syncCycles           *prometheus.CounterVec
	fetchErrors          *prometheus.CounterVec
	challengesDiscovered prometheus.Counter
	solvesRecorded       prometheus.Counter
	duplicateSolves      prometheus.Counter

	// Notification queue
	queueDepth     prometheus.Gauge
	eventsEnqueued prometheus.Counter
	eventsDrained  prometheus.Counter

	// Dispatch loop
	eventsDispatched *prometheus.CounterVec
	dispatchFailures prometheus.Counter
	dispatchLatency  prometheus.Histogram

	// Store / population
	trackedAuteurs   prometheus.Gauge
	storedChallenges prometheus.Gauge

	// Bootstrap
	bootstrapDuration prometheus.Histogram
	bootstrapRuns     prometheus.Counter

	// HTTP ops surface
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// Global metrics manager instance on a private registry so the default Go
// collectors do not leak into scrape output.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "challwatch",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.syncCycles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_cycles_total",
		Help:      "Completed sync cycle iterations by cycle name.",
	}, []string{"cycle"})

	m.fetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_errors_total",
		Help:      "Transient platform fetch failures by cycle name.",
	}, []string{"cycle"})

	m.challengesDiscovered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "challenges_discovered_total",
		Help:      "New challenges discovered after bootstrap.",
	})

	m.solvesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "solves_recorded_total",
		Help:      "New solves persisted after bootstrap.",
	})

	m.duplicateSolves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_solves_skipped_total",
		Help:      "Solves skipped because the (auteur, challenge) pair was already recorded.",
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_queue_depth",
		Help:      "Events currently waiting in the notification queue.",
	})

	m.eventsEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_enqueued_total",
		Help:      "Events appended to the notification queue.",
	})

	m.eventsDrained = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_drained_total",
		Help:      "Events removed from the notification queue by the dispatcher.",
	})

	m.eventsDispatched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_dispatched_total",
		Help:      "Events handed to the notifier by kind.",
	}, []string{"kind"})

	m.dispatchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_failures_total",
		Help:      "Notifier deliveries that returned an error.",
	})

	m.dispatchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_latency_seconds",
		Help:      "Latency of a single notifier delivery.",
		Buckets:   m.histogramBuckets,
	})

	m.trackedAuteurs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_auteurs",
		Help:      "Auteurs currently tracked in the store.",
	})

	m.storedChallenges = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stored_challenges",
		Help:      "Challenges currently persisted in the store.",
	})

	m.bootstrapDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bootstrap_duration_seconds",
		Help:      "Duration of the cold-start full import.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	m.bootstrapRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bootstrap_runs_total",
		Help:      "Bootstrap procedures that performed a full import.",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})

	m.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request handling latency.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})
}

// Package-level helpers operating on the global manager.

func RecordSyncCycle(cycle string) {
	globalManager.syncCycles.WithLabelValues(cycle).Inc()
}

func RecordFetchError(cycle string) {
	globalManager.fetchErrors.WithLabelValues(cycle).Inc()
}

func RecordChallengeDiscovered() {
	globalManager.challengesDiscovered.Inc()
}

func RecordSolveRecorded() {
	globalManager.solvesRecorded.Inc()
}

func RecordDuplicateSolve() {
	globalManager.duplicateSolves.Inc()
}

func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

func RecordEventEnqueued() {
	globalManager.eventsEnqueued.Inc()
}

func RecordEventsDrained(n int) {
	globalManager.eventsDrained.Add(float64(n))
}

func RecordEventDispatched(kind string) {
	globalManager.eventsDispatched.WithLabelValues(kind).Inc()
}

func RecordDispatchFailure() {
	globalManager.dispatchFailures.Inc()
}

func RecordDispatchLatency(seconds float64) {
	globalManager.dispatchLatency.Observe(seconds)
}

func UpdateTrackedAuteurs(count int) {
	globalManager.trackedAuteurs.Set(float64(count))
}

func UpdateStoredChallenges(count int) {
	globalManager.storedChallenges.Set(float64(count))
}

func RecordBootstrapDuration(seconds float64) {
	globalManager.bootstrapDuration.Observe(seconds)
}

func RecordBootstrapRun() {
	globalManager.bootstrapRuns.Inc()
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	globalManager.httpDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

// GetRegistry returns the private registry for scrape handlers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
