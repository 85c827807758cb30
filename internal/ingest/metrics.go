package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsProcessedTotal tracks feed events ingested end to end.
	EventsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsedge_ingest_events_processed_total",
		Help: "Total number of feed events ingested",
	})

	// EventsSkippedTotal tracks feed events dropped, by reason.
	EventsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsedge_ingest_events_skipped_total",
			Help: "Total number of feed events skipped during ingestion",
		},
		[]string{"reason"},
	)

	// SnapshotsWrittenTotal tracks odds snapshots persisted.
	SnapshotsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oddsedge_ingest_snapshots_written_total",
		Help: "Total number of odds snapshots written",
	})

	// SnapshotsSkippedTotal tracks bookmaker blocks not stored, by reason.
	SnapshotsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddsedge_ingest_snapshots_skipped_total",
			Help: "Total number of bookmaker blocks skipped during ingestion",
		},
		[]string{"reason"},
	)

	// IngestDurationSeconds tracks one full ingestion pass.
	IngestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "oddsedge_ingest_duration_seconds",
		Help:    "Duration of one ingestion pass for a sport",
		Buckets: prometheus.DefBuckets,
	})
)
