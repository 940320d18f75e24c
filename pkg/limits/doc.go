// Package limits owns the process-wide set of named admission limiters.
//
// The Registry maps each logical provider endpoint to its WindowedLimiter
// and optionally layers one account-wide limiter over all of them. It is an
// explicitly constructed, dependency-injected object: callers receive a
// *Registry and pass limiters to the executor, so tests get clean per-test
// instances and nothing reaches for ambient singletons.
//
// The package also exposes Prometheus metrics for admission and retry
// behavior (attempt counts, rate-limit hits, pause durations, in-flight
// permits), collected by the executor on the request path.
package limits
