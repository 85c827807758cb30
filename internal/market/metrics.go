package market

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConsensusRequestsTotal tracks consensus computations by mode and outcome.
	ConsensusRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsedge_consensus_requests_total",
			Help: "Total number of consensus computations",
		},
		[]string{"mode", "outcome"},
	)

	// ConsensusDurationSeconds tracks consensus computation latency.
	ConsensusDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsedge_consensus_duration_seconds",
		Help:    "Duration of consensus computation including snapshot loading",
		Buckets: prometheus.DefBuckets,
	})

	// EdgePercentObserved tracks every computed soft-vs-sharp edge, flagged or not.
	EdgePercentObserved = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsedge_edge_percent_observed",
		Help:    "Computed edge percentage of soft-book prices against consensus",
		Buckets: []float64{-20, -10, -5, -2, 0, 2, 5, 10, 15, 20, 30, 50},
	})

	// DiscrepanciesFlaggedTotal tracks flagged discrepancies by bookmaker and selection.
	DiscrepanciesFlaggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsedge_discrepancies_flagged_total",
			Help: "Total number of soft-book discrepancies clearing the edge threshold",
		},
		[]string{"bookmaker", "selection"},
	)
)
