package limits

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for outbound admission and retries.
type Metrics struct {
	// Attempts by endpoint and status class
	attempts *prometheus.CounterVec

	// Rate-limit hits (429s)
	rateLimited *prometheus.CounterVec

	// Back-pressure pauses applied to limiters
	pauseSeconds *prometheus.CounterVec

	// Current in-flight permits per endpoint
	inFlight *prometheus.GaugeVec

	// Attempt latency
	attemptDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a Metrics instance registered with the given
// registerer. Tests pass a fresh prometheus.NewRegistry to avoid duplicate
// registration across instances.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pacer_attempts_total",
				Help: "Total number of provider call attempts",
			},
			[]string{"endpoint", "class"},
		),

		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pacer_rate_limited_total",
				Help: "Total number of attempts rejected with HTTP 429",
			},
			[]string{"endpoint"},
		),

		pauseSeconds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pacer_pause_seconds_total",
				Help: "Cumulative back-pressure pause applied to limiters",
			},
			[]string{"endpoint"},
		),

		inFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pacer_in_flight_permits",
				Help: "Current number of in-flight permits per endpoint",
			},
			[]string{"endpoint"},
		),

		attemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pacer_attempt_duration_seconds",
				Help:    "Provider call attempt latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

// RecordAttempt records one completed attempt with its latency and status
// class ("2xx", "4xx", "429", "5xx", "error").
func (m *Metrics) RecordAttempt(endpoint string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(endpoint, statusClass(status)).Inc()
	m.attemptDuration.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// RecordRateLimited counts a 429 rejection.
func (m *Metrics) RecordRateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(endpoint).Inc()
}

// RecordPause accumulates the back-pressure pause applied to an endpoint's
// limiter.
func (m *Metrics) RecordPause(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.pauseSeconds.WithLabelValues(endpoint).Add(d.Seconds())
}

// SetInFlight updates the in-flight permit gauge for an endpoint.
func (m *Metrics) SetInFlight(endpoint string, n int) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(endpoint).Set(float64(n))
}

// statusClass buckets an HTTP status for the attempts counter. Status 0
// represents a transport error.
func statusClass(status int) string {
	switch {
	case status == 0:
		return "error"
	case status == 429:
		return "429"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 200 && status < 300:
		return "2xx"
	default:
		return "other"
	}
}
