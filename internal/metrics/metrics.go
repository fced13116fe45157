// Package metrics provides Prometheus metrics for the buildwatch service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildwatch_triggers_total",
			Help: "Total number of build triggers sent to the CI server",
		},
		[]string{"job", "result"},
	)
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildwatch_polls_total",
			Help: "Total number of status aggregation polls",
		},
		[]string{"job", "result"},
	)
	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buildwatch_poll_duration_seconds",
			Help:    "Status aggregation duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"job"},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buildwatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buildwatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordTrigger(job, result string) {
	TriggersTotal.WithLabelValues(job, result).Inc()
}

func RecordPoll(job, result string, duration time.Duration) {
	PollsTotal.WithLabelValues(job, result).Inc()
	PollDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
