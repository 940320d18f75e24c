package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// window is the trailing period over which PerMinute is enforced.
	window = time.Minute

	// defaultPollInterval is how often a blocked Acquire re-checks
	// admission conditions. Small relative to the second-scale pauses a
	// provider mandates, so waiters observe new pauses and config changes
	// promptly without burning a core.
	defaultPollInterval = 10 * time.Millisecond
)

// WindowedLimiter gates admission of outbound calls for one endpoint (or,
// for the optional global instance, for all endpoints at once).
//
// A permit is granted only when all of the following hold:
//
//  1. The limiter is not paused (now >= pausedUntil)
//  2. The spacing constraint is satisfied (now - lastStart >= MinInterval)
//  3. Fewer than Burst permits are in flight
//  4. Fewer than PerMinute starts fall inside the trailing window
//
// Example:
//
//	limiter := ratelimit.NewWindowedLimiter(ratelimit.Config{
//	    Burst:     3,
//	    PerMinute: 60,
//	})
//	if err := limiter.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer limiter.Release()
//	// ... perform the call ...
type WindowedLimiter struct {
	mu sync.Mutex

	burst       int
	perMinute   int
	minInterval time.Duration

	inFlight    int
	history     []time.Time
	pausedUntil time.Time
	lastStart   time.Time

	pollInterval time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewWindowedLimiter creates a limiter with the given configuration.
// Non-positive Burst or PerMinute values fall back to 1 so a misconfigured
// limiter throttles hard instead of admitting everything.
func NewWindowedLimiter(cfg Config) *WindowedLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 1
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}

	return &WindowedLimiter{
		burst:        cfg.Burst,
		perMinute:    cfg.PerMinute,
		minInterval:  cfg.MinInterval,
		pollInterval: defaultPollInterval,
		now:          time.Now,
	}
}

// Acquire blocks until a permit is available, then reserves it atomically.
//
// On success the caller MUST call Release exactly once, on every exit path
// of the guarded operation. Acquire returns the context's error if ctx is
// cancelled while waiting; no permit is consumed in that case.
//
// Conditions are re-checked after every wait: a pause or configuration
// change applied by another goroutine while this caller was blocked takes
// effect before the next grant. Waiters are admitted best-effort, not FIFO.
func (wl *WindowedLimiter) Acquire(ctx context.Context) error {
	for {
		if wl.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wl.pollInterval):
		}
	}
}

// tryAcquire performs a single admission check, reserving a permit if all
// conditions hold.
func (wl *WindowedLimiter) tryAcquire() bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	now := wl.now()
	wl.pruneLocked(now)

	if now.Before(wl.pausedUntil) {
		return false
	}
	if wl.minInterval > 0 && !wl.lastStart.IsZero() && now.Sub(wl.lastStart) < wl.minInterval {
		return false
	}
	if wl.inFlight >= wl.burst {
		return false
	}
	if len(wl.history) >= wl.perMinute {
		return false
	}

	wl.inFlight++
	wl.history = append(wl.history, now)
	wl.lastStart = now
	return true
}

// Release returns a permit. It must be called exactly once per successful
// Acquire. The in-flight count is floored at zero so an unbalanced Release
// cannot corrupt admission accounting.
func (wl *WindowedLimiter) Release() {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	if wl.inFlight > 0 {
		wl.inFlight--
	}
}

// PauseFor blocks all new grants for at least d from now. The pause deadline
// is monotonic: a later, shorter pause never shortens an earlier, longer one.
// Safe to call concurrently with Acquire; blocked waiters observe the new
// deadline on their next check.
func (wl *WindowedLimiter) PauseFor(d time.Duration) {
	if d <= 0 {
		return
	}

	wl.mu.Lock()
	defer wl.mu.Unlock()

	until := wl.now().Add(d)
	if until.After(wl.pausedUntil) {
		wl.pausedUntil = until
	}
}

// SetConfig live-updates the limiter's constraints. Only positive fields are
// applied; zero or negative fields leave the prior value unchanged. The new
// configuration applies to subsequent admission checks immediately but never
// revokes permits that were already granted.
func (wl *WindowedLimiter) SetConfig(cfg Config) {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	if cfg.Burst > 0 {
		wl.burst = cfg.Burst
	}
	if cfg.PerMinute > 0 {
		wl.perMinute = cfg.PerMinute
	}
	if cfg.MinInterval > 0 {
		wl.minInterval = cfg.MinInterval
	}
}

// Config returns the currently effective configuration.
func (wl *WindowedLimiter) Config() Config {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	return Config{
		Burst:       wl.burst,
		PerMinute:   wl.perMinute,
		MinInterval: wl.minInterval,
	}
}

// InFlight returns the number of permits currently held.
func (wl *WindowedLimiter) InFlight() int {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	return wl.inFlight
}

// Status returns a snapshot of the limiter's state.
func (wl *WindowedLimiter) Status() Status {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	now := wl.now()
	wl.pruneLocked(now)

	var pausedFor time.Duration
	if wl.pausedUntil.After(now) {
		pausedFor = wl.pausedUntil.Sub(now)
	}

	return Status{
		Config: Config{
			Burst:       wl.burst,
			PerMinute:   wl.perMinute,
			MinInterval: wl.minInterval,
		},
		InFlight:    wl.inFlight,
		WindowCount: len(wl.history),
		PausedFor:   pausedFor,
	}
}

// pruneLocked drops start timestamps that have fallen out of the trailing
// window. Caller must hold the lock.
func (wl *WindowedLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-window)

	// history is append-only in time order, so find the first entry still
	// inside the window and cut everything before it.
	keep := 0
	for keep < len(wl.history) && !wl.history[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		wl.history = append(wl.history[:0], wl.history[keep:]...)
	}
}
