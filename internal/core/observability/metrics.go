// Package observability holds the Prometheus collectors of the search core.
package observability

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)

	filterRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_runs_total",
			Help: "Visible set recomputations by kind (apply, reset).",
		},
		[]string{"kind"},
	)

	visibleRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filter_visible_records",
			Help:    "Size of the visible set after a recomputation.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	viewportFits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewport_fits_total",
			Help: "Viewport commands sent to the map by kind (bounds, reset).",
		},
		[]string{"kind"},
	)

	suggestionsGenerated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "suggestions_generated",
			Help:    "Number of suggestions per generation.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	recordStoreResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_store_results_total",
			Help: "Record loads by source (cache, remote) and outcome.",
		},
		[]string{"source", "outcome"},
	)

	cacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Redis operations by op and result.",
		},
		[]string{"op", "result"},
	)

	redisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation latency in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op"},
	)

	invalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidations_total",
			Help: "Record-change events processed by op and result.",
		},
		[]string{"op", "result"},
	)

	invalidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invalidation_duration_seconds",
			Help:    "Time to apply one record-change event.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	kafkaConsumerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_consumer_errors_total",
			Help: "Kafka consumer errors by kind.",
		},
		[]string{"kind"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_sessions_active",
			Help: "Open search sessions.",
		},
	)
)

// Init also registers the collectors on reg, for a provider with its own
// registry. Already registered collectors are skipped. Build info belongs to
// the provider.
func Init(reg prometheus.Registerer) {
	if reg == nil {
		return
	}
	cs := []prometheus.Collector{
		httpRequestsTotal, httpRequestDurationSeconds, upstreamLatencySeconds,
		filterRuns, visibleRecords, viewportFits, suggestionsGenerated,
		recordStoreResults, cacheOps, redisOpDuration, invalidations,
		invalidationDuration, kafkaConsumerErrors, activeSessions,
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

func ObserveFilter(kind string, visible int) {
	filterRuns.WithLabelValues(kind).Inc()
	visibleRecords.Observe(float64(visible))
}

func IncViewportFit(kind string) {
	viewportFits.WithLabelValues(kind).Inc()
}

func ObserveSuggestions(n int) {
	suggestionsGenerated.Observe(float64(n))
}

// IncRecordStore counts a record load; outcome is hit, miss, expired, ok or
// error.
func IncRecordStore(source, outcome string) {
	recordStoreResults.WithLabelValues(source, outcome).Inc()
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	cacheOps.WithLabelValues(op, res).Inc()
	redisOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

func ObserveInvalidation(op string, d time.Duration, err error) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	invalidations.WithLabelValues(op, res).Inc()
	invalidationDuration.Observe(d.Seconds())
}

func IncKafkaConsumerError(kind string) {
	kafkaConsumerErrors.WithLabelValues(kind).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
