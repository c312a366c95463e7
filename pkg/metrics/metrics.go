package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheAdds records add attempts by result (stored|duplicate|transfer_error|store_error|invalid).
	CacheAdds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filecache_adds_total",
			Help: "Total number of add operations",
		},
		[]string{"mode", "result"},
	)

	// CacheLookups counts key lookups by outcome (hit|miss|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filecache_lookups_total",
			Help: "Total number of key lookups",
		},
		[]string{"result"},
	)

	// CacheEvictions counts evicted entries by operation (delete|clear|expire) and result (removed|failed).
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filecache_evictions_total",
			Help: "Total number of entries processed by eviction",
		},
		[]string{"operation", "result"},
	)

	// CacheNameCollisions counts add operations whose requested name was already taken.
	CacheNameCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filecache_name_collisions_total",
			Help: "Number of stored names that required a numbered suffix",
		},
	)

	// OperationLatency measures mutating engine operations including lock wait.
	OperationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filecache_operation_latency_seconds",
			Help:    "Cache engine operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// SweepRuns records scheduled sweeps by result (success|partial|error).
	SweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filecache_sweep_runs_total",
			Help: "Total number of maintenance sweeps",
		},
		[]string{"result"},
	)

	// AdminRequestLatency measures admin HTTP handlers by method, route and status.
	AdminRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filecache_admin_request_latency_seconds",
			Help:    "Admin HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
