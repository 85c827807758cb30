package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsedge_cache_hits_total",
		Help: "Total number of cache hits",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsedge_cache_misses_total",
		Help: "Total number of cache misses",
	})

	CacheSetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsedge_cache_sets_total",
		Help: "Total number of cache sets",
	})

	CacheDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsedge_cache_deletes_total",
		Help: "Total number of cache deletes",
	})

	CacheHitRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oddsedge_cache_hit_rate",
		Help: "Ratio of cache hits to lookups",
	})

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oddsedge_cache_operation_duration_seconds",
			Help:    "Duration of cache operations",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
		[]string{"operation"},
	)
)
