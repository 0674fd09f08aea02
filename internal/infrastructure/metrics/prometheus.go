// Package metrics exposes verification and HTTP metrics through Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vero/backend/internal/domain"
)

const namespace = "vero"

// Metrics records verification outcomes and request counts
type Metrics struct {
	verifications *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	requests      *prometheus.CounterVec
}

// New registers all collectors on reg. Passing a fresh registry per
// instance keeps tests independent of the global default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		verifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verifications_total",
				Help:      "Total number of completed verifications by category and verdict.",
			},
			[]string{"category", "verdict"},
		),
		fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "explanation_fallbacks_total",
				Help:      "Number of responses served with the fallback explanation.",
			},
			[]string{"category"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "verification_duration_seconds",
				Help:      "End-to-end verification latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"category"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status code.",
			},
			[]string{"method", "path", "status"},
		),
	}
}

// ObserveVerification records one completed verification
func (m *Metrics) ObserveVerification(category domain.Category, verdict domain.Verdict, duration time.Duration) {
	m.verifications.WithLabelValues(string(category), string(verdict)).Inc()
	m.duration.WithLabelValues(string(category)).Observe(duration.Seconds())
}

// ObserveFallback records a response that used the fallback explanation
func (m *Metrics) ObserveFallback(category domain.Category) {
	m.fallbacks.WithLabelValues(string(category)).Inc()
}

// ObserveRequest records one HTTP request. path should be the route
// template, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, path string, status int) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// Handler serves the collectors registered on g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
