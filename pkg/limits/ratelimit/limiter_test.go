package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock lets window and spacing tests advance time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func mustAcquire(t *testing.T, wl *WindowedLimiter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := wl.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
}

// ============================================================================
// Burst (in-flight) limit
// ============================================================================

func TestWindowedLimiter_BurstLimit(t *testing.T) {
	wl := NewWindowedLimiter(Config{Burst: 2, PerMinute: 100})

	mustAcquire(t, wl)
	mustAcquire(t, wl)

	// Third acquire must block until a permit is released.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := wl.Acquire(ctx); err == nil {
		t.Fatal("expected third Acquire to block at burst limit")
	}

	wl.Release()
	mustAcquire(t, wl)

	if got := wl.InFlight(); got != 2 {
		t.Errorf("expected 2 in flight, got %d", got)
	}
}

func TestWindowedLimiter_ConcurrentBurstNeverExceeded(t *testing.T) {
	const burst = 5
	wl := NewWindowedLimiter(Config{Burst: burst, PerMinute: 1000})

	var (
		mu      sync.Mutex
		current int
		peak    int
		wg      sync.WaitGroup
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := wl.Acquire(ctx); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}

			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()

			wl.Release()
		}()
	}

	wg.Wait()

	if peak > burst {
		t.Errorf("observed %d concurrent permits, limit is %d", peak, burst)
	}
	if got := wl.InFlight(); got != 0 {
		t.Errorf("expected 0 in flight after all releases, got %d", got)
	}
}

func TestWindowedLimiter_ReleaseFloorsAtZero(t *testing.T) {
	wl := NewWindowedLimiter(Config{Burst: 1, PerMinute: 10})

	wl.Release()
	wl.Release()

	if got := wl.InFlight(); got != 0 {
		t.Errorf("expected in-flight floor of 0, got %d", got)
	}

	// Accounting must still work after the unbalanced releases.
	mustAcquire(t, wl)
	if got := wl.InFlight(); got != 1 {
		t.Errorf("expected 1 in flight, got %d", got)
	}
}

// ============================================================================
// Rolling window limit
// ============================================================================

func TestWindowedLimiter_PerMinuteWindow(t *testing.T) {
	clock := newFakeClock()
	wl := NewWindowedLimiter(Config{Burst: 10, PerMinute: 3})
	wl.now = clock.Now

	for i := 0; i < 3; i++ {
		if !wl.tryAcquire() {
			t.Fatalf("grant %d should be inside the window limit", i+1)
		}
		wl.Release()
	}

	if wl.tryAcquire() {
		t.Fatal("fourth grant should exceed the per-minute window")
	}

	// 30 seconds later the window still holds all three starts.
	clock.Advance(30 * time.Second)
	if wl.tryAcquire() {
		t.Fatal("grant should still be blocked mid-window")
	}

	// After the window passes, starts are pruned and grants resume.
	clock.Advance(31 * time.Second)
	if !wl.tryAcquire() {
		t.Fatal("grant should succeed after the window expired")
	}
	wl.Release()
}

func TestWindowedLimiter_WindowPrunesOldStarts(t *testing.T) {
	clock := newFakeClock()
	wl := NewWindowedLimiter(Config{Burst: 10, PerMinute: 2})
	wl.now = clock.Now

	if !wl.tryAcquire() {
		t.Fatal("first grant failed")
	}
	wl.Release()

	clock.Advance(45 * time.Second)
	if !wl.tryAcquire() {
		t.Fatal("second grant failed")
	}
	wl.Release()

	// First start is 61s old now and must no longer count.
	clock.Advance(16 * time.Second)
	if !wl.tryAcquire() {
		t.Fatal("grant should succeed once the oldest start aged out")
	}
	wl.Release()

	if got := wl.Status().WindowCount; got != 2 {
		t.Errorf("expected 2 starts in window, got %d", got)
	}
}

// ============================================================================
// Minimum spacing
// ============================================================================

func TestWindowedLimiter_MinInterval(t *testing.T) {
	clock := newFakeClock()
	wl := NewWindowedLimiter(Config{Burst: 10, PerMinute: 100, MinInterval: 500 * time.Millisecond})
	wl.now = clock.Now

	if !wl.tryAcquire() {
		t.Fatal("first grant failed")
	}
	wl.Release()

	if wl.tryAcquire() {
		t.Fatal("grant should be blocked by spacing constraint")
	}

	clock.Advance(499 * time.Millisecond)
	if wl.tryAcquire() {
		t.Fatal("grant should still be blocked 1ms before the interval elapses")
	}

	clock.Advance(time.Millisecond)
	if !wl.tryAcquire() {
		t.Fatal("grant should succeed once the interval elapsed")
	}
	wl.Release()
}

func TestWindowedLimiter_ZeroMinIntervalDisablesSpacing(t *testing.T) {
	clock := newFakeClock()
	wl := NewWindowedLimiter(Config{Burst: 10, PerMinute: 100})
	wl.now = clock.Now

	for i := 0; i < 5; i++ {
		if !wl.tryAcquire() {
			t.Fatalf("grant %d should not be spaced", i+1)
		}
		wl.Release()
	}
}

// ============================================================================
// Pause
// ============================================================================

func TestWindowedLimiter_PauseBlocksAcquire(t *testing.T) {
	wl := NewWindowedLimiter(Config{Burst: 1, PerMinute: 10})
	wl.PauseFor(80 * time.Millisecond)

	start := time.Now()
	mustAcquire(t, wl)
	elapsed := time.Since(start)

	if elapsed < 70*time.Millisecond {
		t.Errorf("Acquire returned after %v, expected to wait out the pause", elapsed)
	}
	wl.Release()
}

func TestWindowedLimiter_PauseIsMonotonic(t *testing.T) {
	wl := NewWindowedLimiter(Config{Burst: 1, PerMinute: 10})

	wl.PauseFor(200 * time.Millisecond)
	longer := wl.Status().PausedFor

	// A shorter follow-up pause must not pull the deadline in.
	wl.PauseFor(10 * time.Millisecond)
	after := wl.Status().PausedFor

	if after < longer-20*time.Millisecond {
		t.Errorf("shorter pause reduced the deadline: %v -> %v", longer, after)
	}

	// A longer follow-up pause extends it.
	wl.PauseFor(500 * time.Millisecond)
	if got := wl.Status().PausedFor; got < 400*time.Millisecond {
		t.Errorf("longer pause did not extend the deadline, remaining %v", got)
	}
}

func TestWindowedLimiter_PauseVisibleToBlockedWaiter(t *testing.T) {
	wl := NewWindowedLimiter(Config{Burst: 1, PerMinute: 10})
	mustAcquire(t, wl)

	done := make(chan time.Duration, 1)
	go func() {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := wl.Acquire(ctx); err != nil {
			done <- -1
			return
		}
		wl.Release()
		done <- time.Since(start)
	}()

	// Let the goroutine start waiting on the burst limit, then pause and
	// release. The waiter must honor the pause applied while it waited.
	time.Sleep(20 * time.Millisecond)
	wl.PauseFor(100 * time.Millisecond)
	wl.Release()

	elapsed := <-done
	if elapsed < 0 {
		t.Fatal("waiter failed to acquire")
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("waiter admitted after %v, expected it to wait out the pause", elapsed)
	}
}

// ============================================================================
// Live reconfiguration
// ============================================================================

func TestWindowedLimiter_SetConfigPartialUpdate(t *testing.T) {
	wl := NewWindowedLimiter(Config{Burst: 3, PerMinute: 60, MinInterval: 100 * time.Millisecond})

	wl.SetConfig(Config{PerMinute: 150})

	got := wl.Config()
	if got.Burst != 3 {
		t.Errorf("Burst changed unexpectedly: %d", got.Burst)
	}
	if got.PerMinute != 150 {
		t.Errorf("PerMinute = %d, want 150", got.PerMinute)
	}
	if got.MinInterval != 100*time.Millisecond {
		t.Errorf("MinInterval changed unexpectedly: %v", got.MinInterval)
	}

	// Zero and negative fields are ignored.
	wl.SetConfig(Config{Burst: 0, PerMinute: -5, MinInterval: 0})
	got = wl.Config()
	if got.Burst != 3 || got.PerMinute != 150 || got.MinInterval != 100*time.Millisecond {
		t.Errorf("non-positive fields must not apply, got %+v", got)
	}
}

func TestWindowedLimiter_SetConfigTightensAdmission(t *testing.T) {
	clock := newFakeClock()
	wl := NewWindowedLimiter(Config{Burst: 10, PerMinute: 100})
	wl.now = clock.Now

	if !wl.tryAcquire() {
		t.Fatal("first grant failed")
	}
	if !wl.tryAcquire() {
		t.Fatal("second grant failed")
	}

	// Tightening burst below the current in-flight count does not revoke
	// granted permits but blocks new grants.
	wl.SetConfig(Config{Burst: 1})
	if wl.tryAcquire() {
		t.Fatal("grant should be blocked after burst was tightened")
	}
	if got := wl.InFlight(); got != 2 {
		t.Errorf("granted permits were revoked, in-flight %d", got)
	}

	wl.Release()
	wl.Release()
	if !wl.tryAcquire() {
		t.Fatal("grant should succeed under the new burst limit")
	}
}

// ============================================================================
// Cancellation
// ============================================================================

func TestWindowedLimiter_AcquireHonorsContext(t *testing.T) {
	wl := NewWindowedLimiter(Config{Burst: 1, PerMinute: 10})
	mustAcquire(t, wl)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- wl.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-errCh; err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	// The cancelled waiter must not have consumed a permit.
	wl.Release()
	if got := wl.InFlight(); got != 0 {
		t.Errorf("expected 0 in flight, got %d", got)
	}
}
