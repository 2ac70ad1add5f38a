package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ContentWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_writes_total",
			Help: "Total number of reconciled content changes",
		},
		[]string{"kind", "op", "result"},
	)

	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Total number of media host uploads",
		},
		[]string{"result"},
	)

	MediaCleanup = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_cleanup_total",
			Help: "Total number of remote media deletions attempted by the janitor",
		},
		[]string{"result"},
	)

	MediaBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_breaker_state",
			Help: "Media host circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	MediaCleanupQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_cleanup_queue_length",
			Help: "Number of remote media deletions waiting in the janitor queue",
		},
	)
)

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
