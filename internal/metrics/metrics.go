// Package metrics registers the Prometheus collectors exposed on
// GET /metrics. Collectors live on the default registry via promauto.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmorate_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"backend"}, // "redis", "local"
	)

	// Domain
	LikesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_likes_total",
			Help: "Like set changes by operation",
		},
		[]string{"op"}, // "add", "remove"
	)

	FriendshipTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_friendship_transitions_total",
			Help: "Friendship edge state transitions",
		},
		[]string{"to"}, // "REQUESTED", "CONFIRMED", "ABSENT"
	)

	// Events
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmorate_events_published_total",
			Help: "Activity events handed to the broker, by result",
		},
		[]string{"type", "result"}, // result: "ok", "error", "breaker_open"
	)

	EventsConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmorate_events_consumed_total",
			Help: "Activity events written to the activity log",
		},
	)
)

// RecordHTTPRequest records one served request. route is the echo route
// pattern (e.g. /v1/films/:id), never the raw path.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLike counts a like that actually changed the like set.
func RecordLike(added bool) {
	op := "remove"
	if added {
		op = "add"
	}
	LikesTotal.WithLabelValues(op).Inc()
}

// RecordFriendshipTransition counts an edge entering the given state.
func RecordFriendshipTransition(to string) {
	FriendshipTransitionsTotal.WithLabelValues(to).Inc()
}

func RecordEventPublished(eventType, result string) {
	EventsPublishedTotal.WithLabelValues(eventType, result).Inc()
}

func RecordEventConsumed() {
	EventsConsumedTotal.Inc()
}

func RecordRateLimited(backend string) {
	RateLimitedTotal.WithLabelValues(backend).Inc()
}
