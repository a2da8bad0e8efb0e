// Package telemetry export các chỉ số Prometheus của pipeline import và dashboard.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seo"

// Metrics gom các chỉ số của service. Mọi method an toàn khi receiver là nil.
type Metrics struct {
	registry *prometheus.Registry

	ImportsTotal      *prometheus.CounterVec
	ImportRecords     *prometheus.CounterVec
	ImportSkipped     *prometheus.CounterVec
	ImportDuration    *prometheus.HistogramVec
	ImportsInFlight   *prometheus.GaugeVec
	StaleImports      prometheus.Counter
	DashboardRequests *prometheus.CounterVec
	DeletedDocuments  *prometheus.CounterVec
}

// New tạo registry riêng kèm collector của Go runtime và process
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Total imports by source and terminal status",
		}, []string{"source", "status"}),
		ImportRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_records_total",
			Help:      "Total reporting documents written by imports",
		}, []string{"source"}),
		ImportSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_skipped_rows_total",
			Help:      "Total raw rows dropped during normalization",
		}, []string{"source"}),
		ImportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Wall time of an import from record creation to terminal status",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 180, 600, 1800},
		}, []string{"source"}),
		ImportsInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "imports_in_flight",
			Help:      "Imports currently running",
		}, []string{"source"}),
		StaleImports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_imports_failed_total",
			Help:      "Pending imports failed by the timeout worker",
		}),
		DashboardRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_requests_total",
			Help:      "Dashboard section computations by section",
		}, []string{"section"}),
		DeletedDocuments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deleted_documents_total",
			Help:      "Reporting documents deleted by replace-on-import or clear",
		}, []string{"source", "reason"}),
	}
}

// Handler trả về handler cho endpoint /metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ImportStarted tăng gauge in-flight, trả về hàm gọi khi import kết thúc
func (m *Metrics) ImportStarted(source string) func() {
	if m == nil {
		return func() {}
	}
	g := m.ImportsInFlight.WithLabelValues(source)
	g.Inc()
	return g.Dec
}

// ObserveImport ghi nhận một import đã kết thúc
func (m *Metrics) ObserveImport(source, status string, took time.Duration, records, skipped int64) {
	if m == nil {
		return
	}
	m.ImportsTotal.WithLabelValues(source, status).Inc()
	m.ImportDuration.WithLabelValues(source).Observe(took.Seconds())
	if records > 0 {
		m.ImportRecords.WithLabelValues(source).Add(float64(records))
	}
	if skipped > 0 {
		m.ImportSkipped.WithLabelValues(source).Add(float64(skipped))
	}
}

// ObserveDeleted ghi nhận số document bị xóa
func (m *Metrics) ObserveDeleted(source, reason string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.DeletedDocuments.WithLabelValues(source, reason).Add(float64(n))
}

// ObserveStale ghi nhận số import bị worker đánh dấu failed
func (m *Metrics) ObserveStale(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.StaleImports.Add(float64(n))
}

// ObserveDashboard đếm một lần tính section dashboard
func (m *Metrics) ObserveDashboard(section string) {
	if m == nil {
		return
	}
	m.DashboardRequests.WithLabelValues(section).Inc()
}
