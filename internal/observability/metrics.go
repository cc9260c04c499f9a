package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reelhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// FeedRequests counts served feed pages by feed name.
	FeedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_feed_requests_total",
		Help: "Feed pages served by feed",
	}, []string{"feed"})

	// ReactionToggles counts reaction toggles by target, kind and resulting state.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_reaction_toggles_total",
		Help: "Reaction toggles by target, kind and resulting state",
	}, []string{"target", "kind", "state"})

	// VideoViews counts view increments, split by whether they were counted.
	VideoViews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_video_views_total",
		Help: "Video reads by outcome (counted, deduplicated)",
	}, []string{"outcome"})

	// RateLimitRejections counts requests rejected by the Redis rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelhub_rate_limit_rejections_total",
		Help: "Requests rejected by per-route rate limits",
	}, []string{"resource"})
)

// ToggleState renders a toggle outcome as a metric label.
func ToggleState(active bool) string {
	if active {
		return "on"
	}
	return "off"
}
