// Package storage persists discovered quota records so a restarted process
// can seed its limiters from the last known provider limits instead of the
// static defaults.
//
// Two backends are provided:
//
//   - MemoryBackend: fast, no persistence; the default and the right choice
//     for tests and short-lived invocations.
//   - SQLiteBackend: durable single-file storage for long-running deployments.
//
// Both are safe for concurrent use. Persistence is strictly best-effort: a
// failed write never blocks or fails a provider call, and records are
// advisory seeds, always superseded by live response headers.
package storage
