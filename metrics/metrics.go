// Package metrics exposes Prometheus collectors for auth, bookings, form
// submissions and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/form"
	"github.com/lborres/wanderlust/services"
)

const namespace = "wanderlust"

var (
	_ services.AuthEvents    = (*Metrics)(nil)
	_ services.BookingEvents = (*Metrics)(nil)
	_ form.Observer          = (*Metrics)(nil)
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prom.Registry

	authEvents   *prom.CounterVec
	bookings     *prom.CounterVec
	submissions  *prom.CounterVec
	submitTime   *prom.HistogramVec
	httpRequests *prom.CounterVec
	httpDuration *prom.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prom.NewRegistry(),
		authEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Sign-up and sign-in attempts by outcome.",
		}, []string{"action", "outcome"}),
		bookings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "booking_writes_total",
			Help:      "Bookings created or moved, by resulting status.",
		}, []string{"status"}),
		submissions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_total",
			Help:      "Outbound form submissions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		submitTime: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "form_submission_seconds",
			Help:      "Time spent in outbound form submissions.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 3, 5, 10, 30},
		}, []string{"kind"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.authEvents,
		m.bookings,
		m.submissions,
		m.submitTime,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (m *Metrics) AuthEvent(action string, err error) {
	m.authEvents.WithLabelValues(action, outcome(err)).Inc()
}

func (m *Metrics) BookingEvent(status core.BookingStatus) {
	m.bookings.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ObserveSubmission(kind string, elapsed time.Duration, err error) {
	m.submissions.WithLabelValues(kind, outcome(err)).Inc()
	m.submitTime.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveRequest records one HTTP request. route is the route pattern, not
// the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// WatchCache exports the session cache counters.
func (m *Metrics) WatchCache(c core.CacheWithStats) {
	gauge := func(name, help string, read func(core.CacheStats) float64) prom.Collector {
		return prom.NewGaugeFunc(prom.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session_cache",
			Name:      name,
			Help:      help,
		}, func() float64 { return read(c.Stats()) })
	}
	m.registry.MustRegister(
		gauge("hits", "Session cache hits.", func(s core.CacheStats) float64 { return float64(s.Hits) }),
		gauge("misses", "Session cache misses.", func(s core.CacheStats) float64 { return float64(s.Misses) }),
		gauge("evictions", "Session cache evictions.", func(s core.CacheStats) float64 { return float64(s.Evictions) }),
		gauge("size", "Sessions currently cached.", func(s core.CacheStats) float64 { return float64(s.Size) }),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prom.Registry {
	return m.registry
}
