// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics registers the service's Prometheus collectors on the
// default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes.
const (
	OutcomeHit          = "hit"
	OutcomeFetched      = "fetched"
	OutcomeNotAvailable = "not_available"
	OutcomeSuppressed   = "suppressed"
	OutcomeInternal     = "internal"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_resolutions_total",
			Help: "PDF resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// StaleEntriesTotal counts records that claimed a PDF whose file was
	// missing or empty.
	StaleEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdf_stale_entries_total",
			Help: "Cached records whose PDF file had disappeared",
		},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawler_fetch_duration_seconds",
			Help:    "External crawler fetch duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Metadata store operation failures",
		},
		[]string{"operation"},
	)

	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"version", "environment"},
	)
)

// Init records the build and environment labels.
func Init(version, environment string) {
	ApplicationInfo.WithLabelValues(version, environment).Set(1)
}
