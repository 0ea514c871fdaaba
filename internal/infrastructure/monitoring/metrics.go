package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the launcher's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Catalog metrics
	AppsInstalled *prometheus.CounterVec
	AppsDeleted   prometheus.Counter
	CatalogApps   prometheus.Gauge

	// Import metrics
	ImportFailures *prometheus.CounterVec
	ImportDuration *prometheus.HistogramVec

	// Launch metrics
	Launches        *prometheus.CounterVec
	OpenContexts    prometheus.Gauge
	ReleasedHandles prometheus.Counter

	// Remote lookups
	RemoteCalls *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    prometheus.Counter

	Uptime    prometheus.GaugeFunc
	startTime time.Time
}

// NewMetrics creates collectors on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{registry: reg, startTime: time.Now()}

	m.RequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "launcher_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	m.RequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "launcher_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.AppsInstalled = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "launcher_apps_installed_total",
		Help: "Apps installed, by import source",
	}, []string{"source"})
	m.AppsDeleted = factory.NewCounter(prometheus.CounterOpts{
		Name: "launcher_apps_deleted_total",
		Help: "Apps deleted",
	})
	m.CatalogApps = factory.NewGauge(prometheus.GaugeOpts{
		Name: "launcher_catalog_apps",
		Help: "Apps currently in the catalog",
	})

	m.ImportFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "launcher_import_failures_total",
		Help: "Failed imports, by source and reason",
	}, []string{"source", "reason"})
	m.ImportDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "launcher_import_duration_seconds",
		Help:    "Import pipeline latency, by source",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
	}, []string{"source"})

	m.Launches = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "launcher_app_launches_total",
		Help: "App launches, by app type and strategy",
	}, []string{"type", "strategy"})
	m.OpenContexts = factory.NewGauge(prometheus.GaugeOpts{
		Name: "launcher_open_contexts",
		Help: "Presentation contexts holding a document",
	})
	m.ReleasedHandles = factory.NewCounter(prometheus.CounterOpts{
		Name: "launcher_released_handles_total",
		Help: "Document handles released",
	})

	m.RemoteCalls = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "launcher_remote_calls_total",
		Help: "Outbound lookups, by purpose and outcome",
	}, []string{"purpose", "outcome"})

	m.WSConnections = factory.NewGauge(prometheus.GaugeOpts{
		Name: "launcher_ws_connections",
		Help: "Open change-stream connections",
	})
	m.WSMessages = factory.NewCounter(prometheus.CounterOpts{
		Name: "launcher_ws_messages_total",
		Help: "Change notifications pushed to clients",
	})

	m.Uptime = factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "launcher_uptime_seconds",
		Help: "Seconds since the process started",
	}, func() float64 { return time.Since(m.startTime).Seconds() })

	return m
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordInstall counts an installed app
func (m *Metrics) RecordInstall(source string) {
	if m == nil {
		return
	}
	m.AppsInstalled.WithLabelValues(source).Inc()
}

// RecordDelete counts a deleted app
func (m *Metrics) RecordDelete() {
	if m == nil {
		return
	}
	m.AppsDeleted.Inc()
}

// SetCatalogApps sets the catalog size gauge
func (m *Metrics) SetCatalogApps(count int) {
	if m == nil {
		return
	}
	m.CatalogApps.Set(float64(count))
}

// RecordImport observes an import attempt; reason is empty on success
func (m *Metrics) RecordImport(source, reason string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ImportDuration.WithLabelValues(source).Observe(duration.Seconds())
	if reason != "" {
		m.ImportFailures.WithLabelValues(source, reason).Inc()
	}
}

// RecordLaunch counts a launch
func (m *Metrics) RecordLaunch(appType, strategy string) {
	if m == nil {
		return
	}
	m.Launches.WithLabelValues(appType, strategy).Inc()
}

// ContextOpened tracks a presentation context taking a document
func (m *Metrics) ContextOpened() {
	if m == nil {
		return
	}
	m.OpenContexts.Inc()
}

// HandleReleased tracks a document handle being released
func (m *Metrics) HandleReleased() {
	if m == nil {
		return
	}
	m.OpenContexts.Dec()
	m.ReleasedHandles.Inc()
}

// RecordRemoteCall counts an outbound lookup
func (m *Metrics) RecordRemoteCall(purpose, outcome string) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(purpose, outcome).Inc()
}

// IncWSConnections tracks a new stream client
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections tracks a closed stream client
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// RecordWSMessage counts a pushed notification
func (m *Metrics) RecordWSMessage() {
	if m == nil {
		return
	}
	m.WSMessages.Inc()
}
