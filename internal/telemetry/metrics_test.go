package telemetry

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveImport(t *testing.T) {
	m := New()

	done := m.ImportStarted("gsc")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ImportsInFlight.WithLabelValues("gsc")))
	done()
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ImportsInFlight.WithLabelValues("gsc")))

	m.ObserveImport("gsc", "completed", 2*time.Second, 120, 3)
	m.ObserveImport("gsc", "failed", time.Second, 0, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ImportsTotal.WithLabelValues("gsc", "completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ImportsTotal.WithLabelValues("gsc", "failed")))
	assert.Equal(t, float64(120), testutil.ToFloat64(m.ImportRecords.WithLabelValues("gsc")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.ImportSkipped.WithLabelValues("gsc")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ImportStarted("ahrefs")()
		m.ObserveImport("ahrefs", "completed", time.Second, 1, 1)
		m.ObserveDeleted("ahrefs", "clear", 4)
		m.ObserveStale(2)
		m.ObserveDashboard("table")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveDashboard("summary")
	m.ObserveDeleted("gsc", "replace", 10)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `seo_dashboard_requests_total{section="summary"} 1`)
	assert.Contains(t, string(body), `seo_deleted_documents_total{reason="replace",source="gsc"} 10`)
}
