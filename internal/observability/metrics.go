package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mingle_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheRequests counts cache lookups by key prefix and outcome (hit/miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_cache_requests_total",
		Help: "Total cache lookups by key prefix and outcome",
	}, []string{"prefix", "outcome"})

	// FollowToggles counts follow toggle operations by resulting state.
	FollowToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_follow_toggles_total",
		Help: "Total follow toggles by resulting state (followed/unfollowed)",
	}, []string{"result"})

	// PostsCreated counts created posts.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mingle_posts_created_total",
		Help: "Total number of posts created",
	})

	// AccountsDeleted counts cascade account deletions.
	AccountsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mingle_accounts_deleted_total",
		Help: "Total number of accounts deleted",
	})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
