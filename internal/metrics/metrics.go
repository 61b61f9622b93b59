package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scan metrics
	ScansTotal          *prometheus.CounterVec
	ScanDurationSeconds prometheus.Histogram
	FilesTotal          *prometheus.CounterVec

	// Probe metrics
	ProbeFailuresTotal prometheus.Counter

	// Store metrics
	StaleLinkRemovalsTotal   *prometheus.CounterVec
	IntegrityViolationsTotal *prometheus.CounterVec

	// Index size
	VideosIndexed prometheus.Gauge

	// HTTP metrics
	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec
}

// New creates a new Metrics instance registered with reg.
// A nil reg creates unregistered collectors, which is handy in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ScansTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hollywoo_scans_total",
				Help: "Total number of folder scans",
			},
			[]string{"status"},
		),
		ScanDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hollywoo_scan_duration_seconds",
				Help:    "Duration of folder scans in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
			},
		),
		FilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hollywoo_scan_files_total",
				Help: "Files seen by the scanner, by outcome",
			},
			[]string{"outcome"},
		),

		ProbeFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hollywoo_probe_failures_total",
				Help: "Total number of metadata probes that failed or returned no resolution",
			},
		),

		StaleLinkRemovalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hollywoo_stale_link_removals_total",
				Help: "Link removals that found no link to remove",
			},
			[]string{"link"},
		),
		IntegrityViolationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hollywoo_integrity_violations_total",
				Help: "Writes rejected by a uniqueness or foreign key constraint",
			},
			[]string{"op"},
		),

		VideosIndexed: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hollywoo_videos_indexed",
				Help: "Number of videos in the index after the last scan",
			},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hollywoo_http_requests_total",
				Help: "Total number of API requests by method, route, and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hollywoo_http_request_duration_seconds",
				Help:    "Histogram of request durations by method and route",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
	}
}

// Scan outcome labels for FilesTotal
const (
	OutcomeSkipped   = "skipped"
	OutcomeInserted  = "inserted"
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeError     = "error"
)
