package history

import (
	"sync"
	"time"
)

// MemoryStore keeps snapshots in memory. Suitable for tests and for
// sessions that don't configure a history file.
type MemoryStore struct {
	mu     sync.RWMutex
	byWf   map[string][]record
	seq    int64
	closed bool
}

type record struct {
	seq     int64
	savedAt time.Time
	data    []byte
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byWf: make(map[string][]record)}
}

// Save implements Store.
func (s *MemoryStore) Save(workflowID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.seq++
	buf := append([]byte(nil), data...)
	s.byWf[workflowID] = append(s.byWf[workflowID], record{
		seq:     s.seq,
		savedAt: time.Now().UTC(),
		data:    buf,
	})
	return nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(workflowID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	recs := s.byWf[workflowID]
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	last := recs[len(recs)-1]
	return append([]byte(nil), last.data...), nil
}

// List implements Store.
func (s *MemoryStore) List(workflowID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	recs := s.byWf[workflowID]
	infos := make([]Info, 0, len(recs))
	for _, r := range recs {
		infos = append(infos, Info{
			WorkflowID: workflowID,
			Sequence:   r.seq,
			SavedAt:    r.savedAt,
			Size:       len(r.data),
		})
	}
	return infos, nil
}

// Prune implements Store.
func (s *MemoryStore) Prune(workflowID string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if keep < 0 {
		keep = 0
	}
	recs := s.byWf[workflowID]
	if len(recs) > keep {
		s.byWf[workflowID] = append([]record(nil), recs[len(recs)-keep:]...)
	}
	return nil
}

// DeleteWorkflow implements Store.
func (s *MemoryStore) DeleteWorkflow(workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	delete(s.byWf, workflowID)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
