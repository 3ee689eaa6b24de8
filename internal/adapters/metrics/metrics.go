package metrics

import (
	"CivicPulse/internal/core/ports"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for report transitions and the HTTP API.
type Metrics struct {
	Transitions     *prometheus.CounterVec
	CivicCoins      prometheus.Counter
	RequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

var _ ports.TransitionMetrics = (*Metrics)(nil)

// New registers all metrics on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "civicpulse_report_transitions_total",
			Help: "Report lifecycle transitions by name and outcome (ok or error kind)",
		}, []string{"transition", "outcome"}),
		CivicCoins: f.NewCounter(prometheus.CounterOpts{
			Name: "civicpulse_civic_coins_awarded_total",
			Help: "Civic coins granted on verified reports",
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civicpulse_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}
}

// ObserveTransition counts one transition attempt.
func (m *Metrics) ObserveTransition(transition, outcome string) {
	m.Transitions.WithLabelValues(transition, outcome).Inc()
}

// AddCivicCoins records coins granted by a verification.
func (m *Metrics) AddCivicCoins(n int) {
	m.CivicCoins.Add(float64(n))
}

// ObserveRequest records the duration of one HTTP request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
