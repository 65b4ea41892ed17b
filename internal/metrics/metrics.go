// Package metrics registers the pipeline's Prometheus collectors on the
// default registry, exposed by the daemon at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchFailures counts classified ingestion failures per city.
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_fetch_failures_total",
		Help: "Number of failed provider fetches, by city and error kind.",
	}, []string{"city", "kind"})

	// RecordsInserted counts rows persisted per city.
	RecordsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_records_inserted_total",
		Help: "Number of weather records inserted, by city.",
	}, []string{"city"})

	// RecordsFlaggedInvalid counts persisted rows that failed an advisory invariant.
	RecordsFlaggedInvalid = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_records_flagged_invalid_total",
		Help: "Number of inserted records stored with is_valid=false.",
	}, []string{"city"})

	// RecordsRejected counts payloads rejected for missing required fields.
	RecordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_records_rejected_total",
		Help: "Number of payloads rejected during validation, by city.",
	}, []string{"city"})

	// CycleDuration observes how long a full scheduler cycle takes.
	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "weather_cycle_duration_seconds",
		Help:    "Wall-clock duration of one scheduler cycle across all cities.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
