package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procspec_import_rows_total",
			Help: "Total number of processor rows stored by CSV imports",
		},
	)

	importFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procspec_import_files_total",
			Help: "Total number of CSV sources processed, by outcome",
		},
		[]string{"outcome"},
	)

	importDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "procspec_import_duration_seconds",
			Help:    "Time spent importing one CSV source",
			Buckets: prometheus.DefBuckets,
		},
	)

	uploadsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "procspec_uploads_in_flight",
			Help: "Number of CSV imports holding an upload slot",
		},
	)

	uploadsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procspec_uploads_rejected_total",
			Help: "Total number of uploads that gave up waiting for a slot",
		},
	)
)

// outcomeLabel classifies an import error for the files counter.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsValidation(err):
		return "invalid"
	case IsTransient(err):
		return "transient"
	default:
		return "error"
	}
}
