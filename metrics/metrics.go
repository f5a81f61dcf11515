package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CollectionRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ranked_collection_runs_total",
		Help: "Total collection runs per subreddit",
	}, []string{"subreddit"})
	CollectionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ranked_collection_errors_total",
		Help: "Total failed collection runs per subreddit",
	}, []string{"subreddit"})
	FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ranked_fetch_errors_total",
		Help: "Total upstream fetch errors per endpoint",
	}, []string{"endpoint"})
	SnapshotWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ranked_snapshot_writes_total",
		Help: "Total snapshot documents written",
	})
	CollectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ranked_collection_duration_seconds",
		Help:    "Collection run duration seconds",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(CollectionRuns, CollectionErrors, FetchErrors, SnapshotWrites, CollectionDuration)
}

// ObserveCollectionDuration records a run duration
func ObserveCollectionDuration(start time.Time) {
	CollectionDuration.Observe(time.Since(start).Seconds())
}
