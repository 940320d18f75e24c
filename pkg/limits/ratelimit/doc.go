// Package ratelimit implements the admission gate placed in front of every
// outbound provider call.
//
// The central type is WindowedLimiter, which enforces three independent
// constraints on call starts:
//
//   - Burst: maximum concurrent in-flight calls
//   - PerMinute: maximum call starts in any trailing 60-second window
//   - MinInterval: minimum spacing between two consecutive call starts
//
// The three constraints map to the three distinct failure modes providers
// guard against (burst spikes, sustained throughput, tight-loop hammering)
// and are enforced independently because a provider may tighten any one of
// them at runtime.
//
// A limiter can additionally be paused for an externally computed duration
// (PauseFor), which is how provider back-pressure (HTTP 429, Retry-After)
// is translated into delayed admission, and reconfigured live (SetConfig)
// as fresh limits are discovered from response headers.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Acquire blocks cooperatively and
// re-checks every condition after each wait, so pauses and configuration
// changes made by other goroutines are visible to callers already waiting.
// No ordering is guaranteed between concurrent waiters.
package ratelimit
