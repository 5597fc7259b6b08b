package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lostpoint_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// CacheLookups counts result-cache lookups by outcome (hit|miss|error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostpoint_cache_lookups_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"kind", "outcome"},
	)

	// QuotaDecisions counts daily-quota admission decisions (admit|deny|degraded).
	QuotaDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lostpoint_quota_decisions_total",
			Help: "Total number of daily posting quota decisions",
		},
		[]string{"outcome"},
	)

	// ItemsCreated counts successfully persisted lost item posts.
	ItemsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lostpoint_items_created_total",
			Help: "Total number of lost items created",
		},
	)
)
