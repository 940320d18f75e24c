package exec

import (
	"testing"
	"time"
)

func TestBackoffDelay_Growth(t *testing.T) {
	noJitter := func(int64) int64 { return 0 }

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // 32s capped
		{6, 30 * time.Second},
		{20, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := backoffDelay(tt.attempt, noJitter); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffDelay_JitterBounds(t *testing.T) {
	fullJitter := func(n int64) int64 { return n - 1 }

	// At attempt 0 the jittered delay stays within [1s, 2s).
	got := backoffDelay(0, fullJitter)
	if got < time.Second || got >= 2*time.Second {
		t.Errorf("jittered delay %v outside [1s, 2s)", got)
	}

	// Jitter never pushes the delay past the cap.
	if got := backoffDelay(10, fullJitter); got != maxBackoff {
		t.Errorf("capped delay = %v, want %v", got, maxBackoff)
	}
}

func TestBackoffDelay_NonDecreasing(t *testing.T) {
	noJitter := func(int64) int64 { return 0 }

	prev := time.Duration(0)
	for attempt := 0; attempt < 10; attempt++ {
		got := backoffDelay(attempt, noJitter)
		if got < prev {
			t.Errorf("delay decreased at attempt %d: %v -> %v", attempt, prev, got)
		}
		prev = got
	}
}

func TestBackoffDelay_DefaultJitterSource(t *testing.T) {
	// nil jitter source falls back to math/rand and must stay in bounds.
	for i := 0; i < 100; i++ {
		got := backoffDelay(0, nil)
		if got < time.Second || got > 2*time.Second {
			t.Fatalf("delay %v outside [1s, 2s]", got)
		}
	}
}
