package ratelimit

import "time"

// Config contains the admission constraints for a single WindowedLimiter.
//
// When passed to SetConfig, only positive fields are applied; zero or
// negative fields leave the current value unchanged. This lets header-derived
// partial updates tighten one constraint without clobbering the others.
type Config struct {
	// Burst is the maximum number of concurrent in-flight calls.
	Burst int

	// PerMinute is the maximum number of call starts permitted in any
	// trailing 60-second window.
	PerMinute int

	// MinInterval is the minimum time between two consecutive call starts.
	// Zero disables the spacing constraint.
	MinInterval time.Duration
}

// Status is a point-in-time snapshot of a limiter's state, used for
// reporting and the registry's status output.
type Status struct {
	// Config is the currently effective configuration.
	Config Config

	// InFlight is the number of acquired-but-not-released permits.
	InFlight int

	// WindowCount is the number of call starts in the trailing window.
	WindowCount int

	// PausedFor is the remaining pause duration, zero if not paused.
	PausedFor time.Duration
}
