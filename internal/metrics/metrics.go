// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ScanOutcomes     *prometheus.CounterVec
	ScanDuration     prometheus.Histogram
	LoaderFallbacks  *prometheus.CounterVec
	ProfileSaves     prometheus.Counter
	GuardRejections  *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPRequestTimes *prometheus.HistogramVec
}

// New creates and registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ScanOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardshare_scan_outcomes_total",
			Help: "Business card scans by outcome kind",
		}, []string{"kind"}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardshare_scan_duration_seconds",
			Help:    "Time spent waiting on the vision model per scan",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
		}),
		LoaderFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardshare_profile_load_fallbacks_total",
			Help: "Times the stored profile was replaced by defaults, by reason",
		}, []string{"reason"}),
		ProfileSaves: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardshare_profile_saves_total",
			Help: "Total number of profile records persisted",
		}),
		GuardRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardshare_guard_rejections_total",
			Help: "Candidate records rejected by the schema guard, by field",
		}, []string{"field"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardshare_notifications_total",
			Help: "Contact notifications by delivery result",
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardshare_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPRequestTimes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cardshare_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) IncrementScanOutcome(kind string) {
	if m == nil {
		return
	}
	m.ScanOutcomes.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveScanDuration(seconds float64) {
	if m == nil {
		return
	}
	m.ScanDuration.Observe(seconds)
}

func (m *Metrics) IncrementLoaderFallback(reason string) {
	if m == nil {
		return
	}
	m.LoaderFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementProfileSaves() {
	if m == nil {
		return
	}
	m.ProfileSaves.Inc()
}

func (m *Metrics) IncrementGuardRejection(field string) {
	if m == nil {
		return
	}
	m.GuardRejections.WithLabelValues(field).Inc()
}

func (m *Metrics) IncrementNotification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPRequestTimes.WithLabelValues(method, route).Observe(seconds)
}
