package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comment_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comment_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// CommentOperations counts service level outcomes: op is list, create,
	// update or delete and result is ok or the errno code.
	CommentOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comment_operations_total",
			Help: "Comment operations by kind and result.",
		},
		[]string{"op", "result"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comment_events_published_total",
			Help: "Comment events handed to the broker by type and result.",
		},
		[]string{"type", "result"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, RequestDuration, CommentOperations, EventsPublished)
}
