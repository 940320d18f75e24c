package diag

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// stats holds the mutable counters for one endpoint key.
type stats struct {
	calls          int64
	ok             int64
	s429           int64
	errors         int64
	totalLatencyMs int64
	lastStatus     int
	lastRetryAfter time.Duration
}

// EndpointStats is a point-in-time snapshot of one endpoint's counters.
type EndpointStats struct {
	// Endpoint is the diagnostics key, the first token of the call context.
	Endpoint string

	// Calls is the total number of completed attempts.
	Calls int64

	// OK is the number of attempts that returned success semantics.
	OK int64

	// S429 is the number of attempts rejected with HTTP 429.
	S429 int64

	// Errors is the number of attempts with non-429 error semantics.
	Errors int64

	// AvgLatencyMs is the mean attempt latency in milliseconds.
	AvgLatencyMs int64

	// LastStatus is the most recent HTTP status observed, 0 for transport
	// errors.
	LastStatus int

	// LastRetryAfter is the most recent provider-mandated wait.
	LastRetryAfter time.Duration
}

// Recorder accumulates per-endpoint diagnostics. Records are created lazily
// on first use and never removed. All methods are safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*stats
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		stats: make(map[string]*stats),
	}
}

// RecordAttempt records one completed attempt: its latency and the HTTP
// status it produced. Transport failures record a status of 0.
func (r *Recorder) RecordAttempt(endpoint string, latency time.Duration, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(endpoint)
	s.calls++
	s.totalLatencyMs += latency.Milliseconds()
	s.lastStatus = status
}

// RecordOK counts an attempt that returned success semantics.
func (r *Recorder) RecordOK(endpoint string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(endpoint).ok++
}

// Record429 counts a rate-limited attempt and the wait the provider asked
// for, if any.
func (r *Recorder) Record429(endpoint string, retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(endpoint)
	s.s429++
	if retryAfter > 0 {
		s.lastRetryAfter = retryAfter
	}
}

// RecordError counts an attempt with non-429 error semantics.
func (r *Recorder) RecordError(endpoint string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(endpoint).errors++
}

// get returns the stats entry for an endpoint, creating it on first use.
// Caller must hold the lock.
func (r *Recorder) get(endpoint string) *stats {
	s, ok := r.stats[endpoint]
	if !ok {
		s = &stats{}
		r.stats[endpoint] = s
	}
	return s
}

// Snapshot returns per-endpoint snapshots sorted by endpoint key.
func (r *Recorder) Snapshot() []EndpointStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]EndpointStats, 0, len(r.stats))
	for endpoint, s := range r.stats {
		avg := int64(0)
		if s.calls > 0 {
			avg = s.totalLatencyMs / s.calls
		}
		out = append(out, EndpointStats{
			Endpoint:       endpoint,
			Calls:          s.calls,
			OK:             s.ok,
			S429:           s.s429,
			Errors:         s.errors,
			AvgLatencyMs:   avg,
			LastStatus:     s.lastStatus,
			LastRetryAfter: s.lastRetryAfter,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

// LogSummary emits one summary line per endpoint, suitable for process-exit
// logging.
func (r *Recorder) LogSummary(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, s := range r.Snapshot() {
		logger.Info("endpoint summary",
			"endpoint", s.Endpoint,
			"calls", s.Calls,
			"ok", s.OK,
			"s429", s.S429,
			"errors", s.Errors,
			"avg_latency_ms", s.AvgLatencyMs,
			"last_status", s.LastStatus,
			"last_retry_after", s.LastRetryAfter,
		)
	}
}
