package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RowsProcessed    prometheus.Counter
	AircraftInserted prometheus.Counter
	AircraftMerged   prometheus.Counter
	RowsSkipped      prometheus.Counter
	MergeConflicts   prometheus.Counter
	SyncDuration     prometheus.Histogram
	FlightQueries    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RowsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_rows_processed_total",
			Help:      "The total number of source rows consumed by the sync",
		}),
		AircraftInserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_aircraft_inserted_total",
			Help:      "The total number of aircraft records inserted",
		}),
		AircraftMerged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_aircraft_merged_total",
			Help:      "The total number of aircraft records merged",
		}),
		RowsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_rows_skipped_total",
			Help:      "The total number of source rows skipped",
		}),
		MergeConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_merge_conflicts_total",
			Help:      "The total number of optimistic concurrency conflicts observed",
		}),
		SyncDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Time taken by a full sync run",
			Buckets:   prometheus.DefBuckets,
		}),
		FlightQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_queries_total",
			Help:      "The total number of flight view queries served",
		}, []string{"query"}),
	}
}
