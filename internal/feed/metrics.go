package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedRequestsTotal tracks odds feed requests by outcome.
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsedge_feed_requests_total",
			Help: "Total number of odds feed requests",
		},
		[]string{"outcome"},
	)

	// FeedRequestDurationSeconds tracks feed request latency.
	FeedRequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsedge_feed_request_duration_seconds",
		Help:    "Duration of odds feed requests",
		Buckets: prometheus.DefBuckets,
	})

	// FeedEventsReturned tracks how many events each feed call returned.
	FeedEventsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsedge_feed_events_returned",
		Help:    "Number of events returned per feed call",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
)
