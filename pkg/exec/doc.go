// Package exec drives outbound provider calls through admission control,
// quota discovery, and the retry/backoff loop.
//
// The Executor is the single entry point the rest of the application depends
// on: callers hand it the endpoint's limiter, a closure that performs one
// HTTP call, and a short context string, and receive either a usable response
// or a typed error. Everything in between is internal and invisible to the
// caller except as added latency: two-level admission (global then endpoint),
// header-driven limiter reconfiguration, 429 pause propagation, and jittered
// exponential backoff for transient failures.
//
// Response classification:
//
//   - 429: pause both limiters for the provider-mandated wait and retry,
//     unless the wait exceeds the caller's cap, in which case the call fails
//     fast with RetryAfterTooLongError.
//   - 5xx: backoff and retry; the last response is returned if attempts run
//     out. Server errors are not admission-control signals, so no pause.
//   - transport errors: backoff and retry; re-thrown unchanged when
//     exhausted.
//   - everything else (2xx, non-429 4xx): returned immediately; interpreting
//     the body is the caller's responsibility.
package exec
