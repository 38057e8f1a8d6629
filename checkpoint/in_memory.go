package checkpoint

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a volatile Store implementation keeping records in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo sessions. Records are cloned on both save and load
// to prevent external mutation of internal state.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewInMemoryStore constructs an empty in-memory checkpoint store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*Record)}
}

// Save stores a clone of the record, stamping UpdatedAt.
func (s *InMemoryStore) Save(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := record.Clone()
	clone.UpdatedAt = time.Now().UTC()
	s.records[record.SessionID] = clone
	return nil
}

// Load returns a clone of the stored record or ErrNotFound.
func (s *InMemoryStore) Load(_ context.Context, sessionID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

// Delete removes the record for the session; deleting an absent record is a
// no-op.
func (s *InMemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

// Interface compliance (compile-time assertion)
var _ Store = (*InMemoryStore)(nil)
