package exec

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"flightpath-hq/pacer/pkg/limits"
	"flightpath-hq/pacer/pkg/limits/ratelimit"
	"flightpath-hq/pacer/pkg/quota"
	"flightpath-hq/pacer/pkg/quota/storage"
	"flightpath-hq/pacer/pkg/telemetry/diag"
)

// defaultMaxRetries is the attempt ceiling when the caller doesn't set one.
const defaultMaxRetries = 30

// RequestFunc performs one HTTP call. The executor owns when and how often
// it runs; the function must be safe to invoke multiple times.
type RequestFunc func(ctx context.Context) (*http.Response, error)

// Config wires an Executor's collaborators. Only Tracker and Diag are
// required; Global and Store are optional layers.
type Config struct {
	// Global is the account-wide limiter layered over all endpoints.
	// Nil disables global admission.
	Global *ratelimit.WindowedLimiter

	// Tracker records quota discoveries from response headers.
	Tracker *quota.Tracker

	// Diag records per-endpoint call diagnostics.
	Diag *diag.Recorder

	// Store, if set, receives write-through copies of tracker updates so
	// discovered limits survive restarts. Failures are logged, never
	// surfaced: persistence is advisory.
	Store storage.Backend

	// Metrics, if set, receives Prometheus counters for attempts, 429s,
	// pauses, and in-flight permits.
	Metrics *limits.Metrics

	// Logger receives debug/warn logs for retries and pauses.
	// Defaults to slog.Default.
	Logger *slog.Logger
}

// Executor orchestrates provider calls through admission control and the
// retry loop. One Executor serves all endpoints; per-endpoint state lives in
// the limiters and the tracker.
type Executor struct {
	global  *ratelimit.WindowedLimiter
	tracker *quota.Tracker
	diag    *diag.Recorder
	store   storage.Backend
	metrics *limits.Metrics
	logger  *slog.Logger

	// jitter and sleep are replaceable in tests.
	jitter func(int64) int64
	sleep  func(ctx context.Context, d time.Duration) error
}

// CallOption adjusts a single Execute invocation.
type CallOption func(*callOptions)

type callOptions struct {
	maxRetries    int
	maxRetryAfter time.Duration
}

// WithMaxRetries overrides the attempt ceiling (default 30).
func WithMaxRetries(n int) CallOption {
	return func(o *callOptions) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}

// WithMaxRetryAfter caps how long a provider-requested wait may be before
// the call fails fast with RetryAfterTooLongError instead of blocking.
// Zero (the default) accepts any wait.
func WithMaxRetryAfter(d time.Duration) CallOption {
	return func(o *callOptions) {
		if d > 0 {
			o.maxRetryAfter = d
		}
	}
}

// New creates an Executor.
func New(cfg Config) *Executor {
	if cfg.Tracker == nil {
		cfg.Tracker = quota.NewTracker()
	}
	if cfg.Diag == nil {
		cfg.Diag = diag.NewRecorder()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "exec")
	}

	return &Executor{
		global:  cfg.Global,
		tracker: cfg.Tracker,
		diag:    cfg.Diag,
		store:   cfg.Store,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		sleep:   sleepCtx,
	}
}

// Execute performs the call behind the endpoint limiter (and the global
// limiter, if configured), retrying on back-pressure and transient failures.
//
// callCtx is a free-text description of the logical operation; its first
// whitespace-delimited token is the diagnostics and tracker key for the
// endpoint.
//
// The caller receives either a response it may interpret (including non-429
// 4xx responses and, when retries run out, the last 5xx response) or a typed
// error. The caller owns closing the returned response body.
func (e *Executor) Execute(ctx context.Context, limiter *ratelimit.WindowedLimiter, fn RequestFunc, callCtx string, opts ...CallOption) (*http.Response, error) {
	o := callOptions{maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(&o)
	}

	key := endpointKey(callCtx)
	callID := uuid.NewString()
	logger := e.logger.With("call_id", callID, "endpoint", key)

	for attempt := 0; attempt < o.maxRetries; attempt++ {
		resp, err := e.attempt(ctx, limiter, fn, key)
		if err != nil {
			// Admission was cancelled; nothing was attempted.
			if ctx.Err() != nil && err == ctx.Err() {
				return nil, err
			}

			// Transport error: retry with backoff, re-throw unchanged
			// once attempts run out.
			if attempt == o.maxRetries-1 {
				return nil, err
			}
			delay := backoffDelay(attempt, e.jitter)
			logger.Warn("request failed, will retry",
				"attempt", attempt+1,
				"backoff", delay,
				"error", err,
			)
			if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			retryAfter, found := retryAfterFromResponse(resp)
			drain(resp)
			e.diag.Record429(key, retryAfter)
			e.metrics.RecordRateLimited(key)

			if o.maxRetryAfter > 0 && retryAfter > o.maxRetryAfter {
				// The provider wants a wait longer than the caller will
				// tolerate. Fail fast and leave the limiters unpaused so
				// other work is not held hostage.
				return nil, &RetryAfterTooLongError{
					Context:    callCtx,
					RetryAfter: retryAfter,
					Cap:        o.maxRetryAfter,
				}
			}

			delay := retryAfter
			if !found || delay <= 0 {
				delay = backoffDelay(attempt, e.jitter)
			}

			limiter.PauseFor(delay)
			if e.global != nil {
				e.global.PauseFor(delay)
			}
			e.metrics.RecordPause(key, delay)

			logger.Debug("rate limited, pausing",
				"attempt", attempt+1,
				"retry_after", retryAfter,
				"delay", delay,
			)
			if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
				return nil, sleepErr
			}

		case resp.StatusCode >= 500:
			if attempt == o.maxRetries-1 {
				// Out of attempts: the last server-error response is
				// returned for the caller to interpret, not thrown.
				e.diag.RecordError(key)
				return resp, nil
			}
			drain(resp)

			delay := backoffDelay(attempt, e.jitter)
			logger.Warn("server error, will retry",
				"attempt", attempt+1,
				"status", resp.StatusCode,
				"backoff", delay,
			)
			if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
				return nil, sleepErr
			}

		default:
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				e.diag.RecordOK(key)
			} else {
				e.diag.RecordError(key)
			}
			return resp, nil
		}
	}

	return nil, &RetriesExhaustedError{Context: callCtx, Attempts: o.maxRetries}
}

// attempt runs one admission-gated request. Both limiters are released on
// every exit path, including panics in the request function.
func (e *Executor) attempt(ctx context.Context, limiter *ratelimit.WindowedLimiter, fn RequestFunc, key string) (*http.Response, error) {
	if e.global != nil {
		if err := e.global.Acquire(ctx); err != nil {
			return nil, err
		}
		defer e.global.Release()
	}

	if err := limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	e.metrics.SetInFlight(key, limiter.InFlight())
	defer func() {
		limiter.Release()
		e.metrics.SetInFlight(key, limiter.InFlight())
	}()

	start := time.Now()
	resp, err := fn(ctx)
	latency := time.Since(start)

	// A nil response with a nil error violates the RequestFunc contract;
	// classify it as a transport failure so the retry loop never
	// dereferences a nil response.
	if err == nil && resp == nil {
		err = errNilResponse
	}

	status := 0
	if err == nil && resp != nil {
		status = resp.StatusCode
	}
	e.diag.RecordAttempt(key, latency, status)
	e.metrics.RecordAttempt(key, status, latency)

	if err != nil {
		return nil, err
	}

	e.tracker.UpdateFromResponse(key, resp.Header)
	e.persist(ctx, key)
	e.applyDiscoveredLimits(limiter, resp.Header, key)

	// Tier-based micro-delay: a coarse second line of defense while the
	// limiter's configuration catches up to the freshest headers. Applied
	// while the permits are still held so the spacing is real.
	if delay := e.tracker.DelayFor(key); delay > 0 {
		if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
			return resp, nil
		}
	}

	return resp, nil
}

// applyDiscoveredLimits updates the endpoint limiter from the provider's
// limit policy header, deriving the spacing floor from the burst bound.
func (e *Executor) applyDiscoveredLimits(limiter *ratelimit.WindowedLimiter, h http.Header, key string) {
	raw := h.Get("RateLimit-Limit")
	if raw == "" {
		raw = h.Get("X-RateLimit-Limit")
	}
	if raw == "" {
		return
	}

	windows := quota.ParseLimitWindows(raw)
	if windows.Burst == 0 && windows.PerMinute == 0 {
		return
	}

	cfg := ratelimit.Config{
		Burst:     windows.Burst,
		PerMinute: windows.PerMinute,
	}
	if windows.Burst > 0 {
		ms := int(math.Ceil(1000.0 / float64(windows.Burst)))
		cfg.MinInterval = time.Duration(ms) * time.Millisecond
	}

	limiter.SetConfig(cfg)
	e.logger.Debug("limiter reconfigured from headers",
		"endpoint", key,
		"burst", windows.Burst,
		"per_minute", windows.PerMinute,
		"min_interval", cfg.MinInterval,
	)
}

// persist writes the endpoint's freshest quota record through to the store.
func (e *Executor) persist(ctx context.Context, key string) {
	if e.store == nil {
		return
	}

	record, ok := e.tracker.Record(key)
	if !ok {
		return
	}
	if err := e.store.Save(ctx, key, record); err != nil {
		e.logger.Debug("failed to persist quota record",
			"endpoint", key,
			"error", err,
		)
	}
}

// endpointKey extracts the diagnostics/tracker key from a call context
// string: its first whitespace-delimited token.
func endpointKey(callCtx string) string {
	fields := strings.Fields(callCtx)
	if len(fields) == 0 {
		return "unknown"
	}
	return fields[0]
}

// drain discards and closes a response body so the underlying connection can
// be reused for the retry.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes)) //nolint:errcheck
	resp.Body.Close()
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
