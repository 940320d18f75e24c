package storage

import (
	"context"
	"time"

	"flightpath-hq/pacer/pkg/quota"
)

// Backend defines the interface for quota record persistence.
// Implementations must be thread-safe and support concurrent access.
type Backend interface {
	// Save persists the quota record for an endpoint, overwriting any
	// existing record. Returns an error on failure.
	Save(ctx context.Context, endpoint string, record quota.Record) error

	// Load retrieves the quota record for an endpoint.
	// Returns nil if no record exists. Returns an error on system failure.
	Load(ctx context.Context, endpoint string) (*quota.Record, error)

	// LoadAll returns all persisted records keyed by endpoint.
	LoadAll(ctx context.Context) (map[string]quota.Record, error)

	// Cleanup removes records not updated since the given time.
	// Returns the number of records deleted.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases any resources held by the backend.
	// The backend must not be used after Close.
	Close() error
}

// persistedRecord is the serialized form of a quota record. Pointer fields
// stay pointers so an absent header survives a round trip as absent.
type persistedRecord struct {
	Tier       string     `json:"tier"`
	Limit      *int64     `json:"limit,omitempty"`
	Remaining  *int64     `json:"remaining,omitempty"`
	Reset      *time.Time `json:"reset,omitempty"`
	Discovered time.Time  `json:"discovered"`
}

func toPersisted(record quota.Record) persistedRecord {
	return persistedRecord{
		Tier:       string(record.Tier),
		Limit:      record.Limit,
		Remaining:  record.Remaining,
		Reset:      record.Reset,
		Discovered: record.Discovered,
	}
}

func fromPersisted(p persistedRecord) quota.Record {
	tier := quota.ParseTier(p.Tier)
	return quota.Record{
		Tier:       tier,
		Limit:      p.Limit,
		Remaining:  p.Remaining,
		Reset:      p.Reset,
		Discovered: p.Discovered,
	}
}
