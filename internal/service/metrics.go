package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcome labels.
const (
	outcomeOK       = "ok"
	outcomePartial  = "partial"
	outcomeCacheHit = "cache_hit"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

var (
	searchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of catalog searches by outcome",
		},
		[]string{"outcome"},
	)

	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Catalog search latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	categoryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_category_duration_seconds",
			Help:    "Latency of one category query and expansion in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	categoryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_category_failures_total",
			Help: "Total number of category queries that failed and contributed no rows",
		},
		[]string{"category"},
	)

	catalogWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_records_written_total",
			Help: "Total number of catalog records upserted or deleted",
		},
		[]string{"category", "op"},
	)
)
