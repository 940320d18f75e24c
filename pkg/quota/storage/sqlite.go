package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"flightpath-hq/pacer/pkg/quota"
)

var errEmptyEndpoint = errors.New("endpoint cannot be empty")

// SQLiteBackend implements Backend using SQLite for persistence.
// Suitable for single-instance deployments where discovered limits should
// survive process restarts.
//
// SQLiteBackend uses a write-ahead log (WAL) for better concurrent
// performance. SQLite supports a single writer, so the connection pool is
// capped at one open connection.
type SQLiteBackend struct {
	db     *sql.DB
	dbPath string

	mu        sync.RWMutex
	closeOnce sync.Once

	saveStmt    *sql.Stmt
	loadStmt    *sql.Stmt
	loadAllStmt *sql.Stmt
	cleanupStmt *sql.Stmt
}

// NewSQLiteBackend creates a SQLite storage backend at the given path,
// initializing the schema on first use.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{
		db:     db,
		dbPath: dbPath,
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return backend, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quota_records (
		endpoint TEXT NOT NULL PRIMARY KEY,
		record TEXT NOT NULL,
		last_updated INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quota_last_updated ON quota_records(last_updated);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO quota_records (endpoint, record, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT (endpoint) DO UPDATE SET
			record = excluded.record,
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT record FROM quota_records WHERE endpoint = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.loadAllStmt, err = s.db.Prepare(`
		SELECT endpoint, record FROM quota_records
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load-all statement: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`
		DELETE FROM quota_records WHERE last_updated < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cleanup statement: %w", err)
	}

	return nil
}

// Save persists the quota record for an endpoint.
func (s *SQLiteBackend) Save(ctx context.Context, endpoint string, record quota.Record) error {
	if endpoint == "" {
		return errEmptyEndpoint
	}

	data, err := json.Marshal(toPersisted(record))
	if err != nil {
		return fmt.Errorf("failed to marshal quota record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.saveStmt.ExecContext(ctx, endpoint, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save quota record: %w", err)
	}
	return nil
}

// Load retrieves the quota record for an endpoint, nil if absent.
func (s *SQLiteBackend) Load(ctx context.Context, endpoint string) (*quota.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.loadStmt.QueryRowContext(ctx, endpoint).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quota record: %w", err)
	}

	var p persistedRecord
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quota record: %w", err)
	}

	record := fromPersisted(p)
	return &record, nil
}

// LoadAll returns all persisted records keyed by endpoint. Records that fail
// to deserialize are skipped rather than failing the whole load; a corrupt
// row must not prevent startup.
func (s *SQLiteBackend) LoadAll(ctx context.Context) (map[string]quota.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.loadAllStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quota records: %w", err)
	}
	defer rows.Close()

	out := make(map[string]quota.Record)
	for rows.Next() {
		var endpoint, data string
		if err := rows.Scan(&endpoint, &data); err != nil {
			return nil, fmt.Errorf("failed to scan quota record: %w", err)
		}

		var p persistedRecord
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			continue
		}
		out[endpoint] = fromPersisted(p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quota records: %w", err)
	}
	return out, nil
}

// Cleanup removes records not updated since olderThan.
func (s *SQLiteBackend) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.cleanupStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup quota records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(deleted), nil
}

// Close closes the database connection. Safe to call multiple times.
func (s *SQLiteBackend) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.loadAllStmt, s.cleanupStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
