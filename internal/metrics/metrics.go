package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitExceededTotal *prometheus.CounterVec

	// Card interaction metrics
	InteractionsTotal       *prometheus.CounterVec
	UpvoteSyncFailuresTotal prometheus.Counter

	// Curation metrics
	SubmissionsCreatedTotal *prometheus.CounterVec
	ModerationTotal         *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),

			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			InteractionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "curiohub_card_interactions_total",
					Help: "Card actions by action (vote, bookmark) and outcome",
				},
				[]string{"action", "outcome"},
			),
			UpvoteSyncFailuresTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "curiohub_upvote_sync_failures_total",
					Help: "Votes recorded whose upvote total could not be written back",
				},
			),

			SubmissionsCreatedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "curiohub_submissions_created_total",
					Help: "Submissions created by source type",
				},
				[]string{"source_type"},
			),
			ModerationTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "curiohub_moderation_total",
					Help: "Moderation decisions by resulting status",
				},
				[]string{"status"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, creating it on first use.
func Get() *Metrics {
	return Initialize()
}

// RecordInteraction counts one card action outcome.
func RecordInteraction(action, outcome string, countSyncFailed bool) {
	m := Get()
	m.InteractionsTotal.WithLabelValues(action, outcome).Inc()
	if countSyncFailed {
		m.UpvoteSyncFailuresTotal.Inc()
	}
}

func RecordCacheHit(cacheName string) {
	Get().CacheHitsTotal.WithLabelValues(cacheName).Inc()
}

func RecordCacheMiss(cacheName string) {
	Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
}

func RecordRateLimitExceeded(endpoint, method string) {
	Get().RateLimitExceededTotal.WithLabelValues(endpoint, method).Inc()
}
