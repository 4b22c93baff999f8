package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one [Server].
type Metrics struct {
	Requests   *prometheus.CounterVec
	Latency    *prometheus.HistogramVec
	Expansions prometheus.Counter
	Bindings   prometheus.Counter
	Failures   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "haiku_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "haiku_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		Expansions: factory.NewCounter(prometheus.CounterOpts{
			Name: "haiku_expansions_total",
			Help: "Total number of expressions expanded",
		}),
		Bindings: factory.NewCounter(prometheus.CounterOpts{
			Name: "haiku_bindings_total",
			Help: "Total number of views bound",
		}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "haiku_failures_total",
			Help: "Total number of failed expand or bind operations",
		}, []string{"op"}),
		gatherer: reg,
	}
}

// Handler serves the registered collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.Latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// IncrementFailures counts one failed operation.
func (m *Metrics) IncrementFailures(op string) {
	m.Failures.WithLabelValues(op).Inc()
}
