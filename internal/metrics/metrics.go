// Package metrics exposes Prometheus instruments for the dashboard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the API and checkout instruments.
const (
	OutcomeOK             = "ok"
	OutcomeInvalid        = "invalid"
	OutcomeBackendError   = "backend_error"
	OutcomeTransportError = "transport_error"
)

// Collector groups the dashboard's instruments. A nil *Collector is valid
// and records nothing.
type Collector struct {
	apiRequests    *prometheus.CounterVec
	apiDuration    *prometheus.HistogramVec
	checkouts      *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// New registers the instruments on registerer. A nil registerer means the
// process-wide default.
func New(registerer prometheus.Registerer) *Collector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Collector{
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iuran_api_requests_total",
			Help: "Requests made to the village backend, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iuran_api_request_duration_seconds",
			Help:    "Latency of requests to the village backend.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iuran_checkouts_total",
			Help: "Payment submissions from the dashboard, by outcome.",
		}, []string{"outcome"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "iuran_active_sessions",
			Help: "Staff sessions holding dashboard state.",
		}),
	}
}

// ObserveAPI records one backend request.
func (c *Collector) ObserveAPI(operation, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.apiRequests.WithLabelValues(operation, outcome).Inc()
	c.apiDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveCheckout records one payment submission.
func (c *Collector) ObserveCheckout(outcome string) {
	if c == nil {
		return
	}
	c.checkouts.WithLabelValues(outcome).Inc()
}

// SetActiveSessions reports the number of live sessions.
func (c *Collector) SetActiveSessions(n int) {
	if c == nil {
		return
	}
	c.activeSessions.Set(float64(n))
}
