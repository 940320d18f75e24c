package storage

import (
	"context"
	"sync"
	"time"

	"flightpath-hq/pacer/pkg/quota"
)

// MemoryBackend implements Backend using in-memory storage.
// This is the default backend; all data is lost when the process exits.
//
// MemoryBackend is thread-safe using sync.RWMutex.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]quota.Record
	updated map[string]time.Time
}

// NewMemoryBackend creates a new in-memory storage backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		records: make(map[string]quota.Record),
		updated: make(map[string]time.Time),
	}
}

// Save stores the quota record for an endpoint.
func (m *MemoryBackend) Save(_ context.Context, endpoint string, record quota.Record) error {
	if endpoint == "" {
		return errEmptyEndpoint
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[endpoint] = record
	m.updated[endpoint] = time.Now()
	return nil
}

// Load retrieves the quota record for an endpoint, nil if absent.
func (m *MemoryBackend) Load(_ context.Context, endpoint string) (*quota.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[endpoint]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// LoadAll returns a copy of all stored records.
func (m *MemoryBackend) LoadAll(_ context.Context) (map[string]quota.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]quota.Record, len(m.records))
	for endpoint, record := range m.records {
		out[endpoint] = record
	}
	return out, nil
}

// Cleanup removes records not updated since olderThan.
func (m *MemoryBackend) Cleanup(_ context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for endpoint, updated := range m.updated {
		if updated.Before(olderThan) {
			delete(m.records, endpoint)
			delete(m.updated, endpoint)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}
