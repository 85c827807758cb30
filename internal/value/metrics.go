package value

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal tracks value-scan passes.
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsedge_value_scans_total",
		Help: "Total number of value-bet scan passes",
	})

	// ScanDurationSeconds tracks full scan pass latency.
	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsedge_value_scan_duration_seconds",
		Help:    "Duration of one value-bet scan pass over all open games",
		Buckets: prometheus.DefBuckets,
	})

	// ValueBetsDetectedTotal tracks value bets created.
	ValueBetsDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsedge_value_bets_detected_total",
		Help: "Total number of value bets detected and persisted",
	})

	// ValueBetsSkippedTotal tracks discrepancies dropped before recording, by reason.
	ValueBetsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsedge_value_bets_skipped_total",
			Help: "Total number of discrepancies skipped before recording",
		},
		[]string{"reason"},
	)

	// ValueBetStakeUSD tracks recommended stake sizes.
	ValueBetStakeUSD = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsedge_value_bet_stake_usd",
		Help:    "Recommended stake of detected value bets in USD",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)
