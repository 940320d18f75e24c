package quota

import (
	"net/http"
	"sync"
	"time"
)

// Record is the discovered quota information for one endpoint. Records are
// overwritten wholesale on every response, so each one reflects the freshest
// headers seen; fields the provider did not send on that response are nil.
type Record struct {
	// Tier is the last known quota tier for the endpoint.
	Tier Tier

	// Limit is the last-seen quota ceiling, if the provider sent one.
	Limit *int64

	// Remaining is the last-seen remaining count, if sent.
	Remaining *int64

	// Reset is when the provider's window resets, if sent.
	Reset *time.Time

	// Discovered is when this record was last updated.
	Discovered time.Time
}

// Tracker maintains per-endpoint quota records discovered from response
// headers. It is a passive observer: it never blocks or rejects a call.
//
// Records are created lazily on the first response from an endpoint,
// overwritten (not merged) on every subsequent response, and never removed.
// Last-writer-wins per key is sufficient because every response carries a
// complete view of the endpoint's current quota.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]Record

	// now is replaceable in tests.
	now func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

// UpdateFromResponse records the quota signals carried by a response's
// headers for the given endpoint key. An explicitly named tier wins;
// otherwise the tier is inferred from the numeric limit, falling back to
// UNKNOWN when no limit is present. UpdateFromResponse never fails.
func (t *Tracker) UpdateFromResponse(key string, h http.Header) {
	if key == "" {
		return
	}

	parsed := ParseHeaders(h)

	record := Record{
		Tier:       TierUnknown,
		Limit:      parsed.Limit,
		Remaining:  parsed.Remaining,
		Reset:      parsed.Reset,
		Discovered: t.now(),
	}

	switch {
	case parsed.Tier != nil:
		record.Tier = *parsed.Tier
	case parsed.Limit != nil:
		record.Tier = InferTier(*parsed.Limit)
	}

	t.mu.Lock()
	t.records[key] = record
	t.mu.Unlock()
}

// DelayFor returns the tier-based minimum spacing for the endpoint in
// milliseconds, or 0 if nothing has been discovered about it yet. This is a
// coarse floor on inter-call spacing that is independent of the live limiter
// configuration.
func (t *Tracker) DelayFor(key string) time.Duration {
	t.mu.RLock()
	record, ok := t.records[key]
	t.mu.RUnlock()

	if !ok {
		return 0
	}
	return time.Duration(record.Tier.Delay()) * time.Millisecond
}

// Record returns the discovered quota record for the endpoint, and whether
// one exists.
func (t *Tracker) Record(key string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	record, ok := t.records[key]
	return record, ok
}

// Restore seeds the tracker with a previously persisted record. Existing
// in-memory records are not overwritten; live header data always beats a
// snapshot from a prior run.
func (t *Tracker) Restore(key string, record Record) {
	if key == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.records[key]; !ok {
		t.records[key] = record
	}
}

// Snapshot returns a copy of all discovered records keyed by endpoint.
func (t *Tracker) Snapshot() map[string]Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Record, len(t.records))
	for key, record := range t.records {
		out[key] = record
	}
	return out
}
