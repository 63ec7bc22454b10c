package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists snapshots to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite snapshot store.
// The path should be a file path (e.g. "./drafts.db") or ":memory:"
// for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			workflow_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			saved_at TEXT NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (workflow_id, sequence)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_snapshots_workflow_id
		ON snapshots(workflow_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(workflowID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO snapshots (workflow_id, sequence, saved_at, data)
		VALUES (
			?,
			COALESCE((SELECT MAX(sequence) FROM snapshots WHERE workflow_id = ?), 0) + 1,
			?, ?
		)
	`, workflowID, workflowID, time.Now().UTC().Format(time.RFC3339Nano), data)

	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Latest implements Store.
func (s *SQLiteStore) Latest(workflowID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRow(`
		SELECT data FROM snapshots
		WHERE workflow_id = ?
		ORDER BY sequence DESC LIMIT 1
	`, workflowID).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return data, nil
}

// List implements Store.
func (s *SQLiteStore) List(workflowID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT sequence, saved_at, LENGTH(data)
		FROM snapshots
		WHERE workflow_id = ?
		ORDER BY sequence
	`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var savedAt string
		if err := rows.Scan(&info.Sequence, &savedAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scan snapshot info: %w", err)
		}
		info.WorkflowID = workflowID
		info.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return infos, nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(workflowID string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if keep < 0 {
		keep = 0
	}

	_, err := s.db.Exec(`
		DELETE FROM snapshots
		WHERE workflow_id = ?
		AND sequence NOT IN (
			SELECT sequence FROM snapshots
			WHERE workflow_id = ?
			ORDER BY sequence DESC LIMIT ?
		)
	`, workflowID, workflowID, keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// DeleteWorkflow implements Store.
func (s *SQLiteStore) DeleteWorkflow(workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM snapshots WHERE workflow_id = ?
	`, workflowID)
	if err != nil {
		return fmt.Errorf("delete workflow snapshots: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
