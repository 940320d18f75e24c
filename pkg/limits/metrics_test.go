package limits

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordAttempt(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg)

	m.RecordAttempt("profiles", 200, 50*time.Millisecond)
	m.RecordAttempt("profiles", 200, 30*time.Millisecond)
	m.RecordAttempt("profiles", 503, 10*time.Millisecond)
	m.RecordAttempt("events", 0, time.Second)

	if got := testutil.ToFloat64(m.attempts.WithLabelValues("profiles", "2xx")); got != 2 {
		t.Errorf("profiles 2xx attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.attempts.WithLabelValues("profiles", "5xx")); got != 1 {
		t.Errorf("profiles 5xx attempts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.attempts.WithLabelValues("events", "error")); got != 1 {
		t.Errorf("events error attempts = %v, want 1", got)
	}
}

func TestMetrics_RateLimitedAndPause(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg)

	m.RecordRateLimited("events")
	m.RecordRateLimited("events")
	m.RecordPause("events", 30*time.Second)

	if got := testutil.ToFloat64(m.rateLimited.WithLabelValues("events")); got != 2 {
		t.Errorf("rate limited = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pauseSeconds.WithLabelValues("events")); got != 30 {
		t.Errorf("pause seconds = %v, want 30", got)
	}
}

func TestMetrics_InFlightGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg)

	m.SetInFlight("profiles", 3)
	if got := testutil.ToFloat64(m.inFlight.WithLabelValues("profiles")); got != 3 {
		t.Errorf("in flight = %v, want 3", got)
	}
	m.SetInFlight("profiles", 0)
	if got := testutil.ToFloat64(m.inFlight.WithLabelValues("profiles")); got != 0 {
		t.Errorf("in flight after release = %v, want 0", got)
	}
}

func TestMetrics_NilReceiverSafe(t *testing.T) {
	var m *Metrics
	m.RecordAttempt("profiles", 200, time.Millisecond)
	m.RecordRateLimited("profiles")
	m.RecordPause("profiles", time.Second)
	m.SetInFlight("profiles", 1)
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{
		0:   "error",
		200: "2xx",
		201: "2xx",
		301: "other",
		404: "4xx",
		429: "429",
		500: "5xx",
		503: "5xx",
	}
	for status, want := range cases {
		if got := statusClass(status); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", status, got, want)
		}
	}
}
