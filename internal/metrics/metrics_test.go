package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ScansTotal.WithLabelValues("ok").Inc()
	m.FilesTotal.WithLabelValues(OutcomeInserted).Add(2)
	m.ProbeFailuresTotal.Inc()
	m.StaleLinkRemovalsTotal.WithLabelValues("tag").Inc()
	m.IntegrityViolationsTotal.WithLabelValues("FolderAdd").Inc()
	m.ScanDurationSeconds.Observe(1.5)
	m.VideosIndexed.Set(4)
	m.RequestsTotal.WithLabelValues("GET", "/healthz", "200").Inc()
	m.RequestDurationSeconds.WithLabelValues("GET", "/healthz").Observe(0.01)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"hollywoo_scans_total",
		"hollywoo_scan_duration_seconds",
		"hollywoo_scan_files_total",
		"hollywoo_probe_failures_total",
		"hollywoo_stale_link_removals_total",
		"hollywoo_integrity_violations_total",
		"hollywoo_videos_indexed",
		"hollywoo_http_requests_total",
		"hollywoo_http_request_duration_seconds",
	} {
		assert.True(t, names[want], want)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues(OutcomeInserted)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.VideosIndexed))
}

func TestNew_NilRegistererDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		m := New(nil)
		m.ProbeFailuresTotal.Inc()
	})
}

func TestNew_TwoInstancesOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
