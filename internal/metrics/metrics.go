package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CauseListsGeneratedTotal counts cause-list generation attempts per court.
	CauseListsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "causelist_generated_total",
			Help: "Total number of cause lists generated.",
		},
		[]string{"status"},
	)

	// CaseLookupsTotal counts case lookups by outcome: listed, not_listed, error.
	CaseLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "causelist_case_lookups_total",
			Help: "Total number of case lookups.",
		},
		[]string{"outcome"},
	)

	// FilesServedTotal counts download-file responses by status code class.
	FilesServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "causelist_files_served_total",
			Help: "Total number of generated files served.",
		},
		[]string{"status"},
	)

	// FilesSweptTotal counts generated files removed by the retention sweep.
	FilesSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "causelist_files_swept_total",
			Help: "Total number of generated files removed by retention.",
		},
	)

	// HTTPRequestDuration tracks API latency per route and status.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "causelist_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		CauseListsGeneratedTotal,
		CaseLookupsTotal,
		FilesServedTotal,
		FilesSweptTotal,
		HTTPRequestDuration,
	)
}
