package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SwipesTotal counts recorded decisions by action.
	SwipesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blinder_swipes_total",
		Help: "Total number of recorded swipe decisions by action",
	}, []string{"action"})

	// MatchesCreatedTotal counts match rows actually inserted.
	MatchesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blinder_matches_created_total",
		Help: "Total number of matches created",
	})

	// UnmatchesTotal counts unmatches by outcome (ok, partial).
	UnmatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blinder_unmatches_total",
		Help: "Total number of unmatches by outcome",
	}, []string{"outcome"})

	// MessagesSentTotal counts messages appended to match threads.
	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blinder_messages_sent_total",
		Help: "Total number of messages sent",
	})

	// CacheErrorsTotal counts Redis errors by operation type.
	CacheErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blinder_cache_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// HTTPRequestDuration records request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blinder_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// WebSocketConnections is the gauge of open realtime connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blinder_websocket_connections",
		Help: "Number of active WebSocket connections",
	})
)
