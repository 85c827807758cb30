package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BetsSettledTotal tracks settled bets by outcome.
	BetsSettledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsedge_bets_settled_total",
			Help: "Total number of bets settled",
		},
		[]string{"result"},
	)

	// BetPnLUSD tracks realized profit and loss per settled bet.
	BetPnLUSD = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsedge_bet_pnl_usd",
		Help:    "Realized profit and loss of settled bets in USD",
		Buckets: []float64{-500, -100, -50, -25, -10, 0, 10, 25, 50, 100, 500},
	})
)
