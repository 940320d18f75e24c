// Package diag collects lightweight per-endpoint call diagnostics.
//
// The Recorder keeps monotonically increasing counters (calls, successes,
// 429s, other errors), cumulative latency, and the last observed status and
// retry-after per endpoint key. Updates are O(1) and happen synchronously on
// the request path, so the recorder deliberately carries no external
// dependencies and no background machinery.
//
// Snapshot and LogSummary exist for reporting: the orchestrating process
// logs one line per endpoint at exit, and the optional Scheduler emits the
// same summary on a cron schedule for long-running deployments.
package diag
