// Package metrics defines Prometheus collectors for proximity searches and
// feature store access.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts searches by operation
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_nearest_searches_total",
			Help: "Total number of searches by operation",
		},
		[]string{"op"}, // "overlap", "nearest", "upstream", "downstream"
	)

	// SearchIterations tracks how many windows a k-nearest search queried
	SearchIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vibe_nearest_search_iterations",
			Help:    "Number of windows queried per k-nearest search",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 12, 16, 32},
		},
	)

	// SearchExhaustedTotal counts searches that stopped before finding k features
	SearchExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_nearest_search_exhausted_total",
			Help: "Total number of k-nearest searches that stopped with fewer than k candidates",
		},
		[]string{"reason"}, // "chrom_start", "chrom_end", "max_range", "max_iterations"
	)

	// StoreFetchDuration tracks feature store fetch latency
	StoreFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vibe_nearest_store_fetch_duration_seconds",
			Help:    "Latency of feature store fetches",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	// StoreFetchErrorsTotal counts failed fetches
	StoreFetchErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_nearest_store_fetch_errors_total",
			Help: "Total number of failed feature store fetches",
		},
	)
)
