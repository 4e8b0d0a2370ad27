// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"sync"

	"github.com/discochess/lrucache/internal/record"
	"github.com/discochess/lrucache/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store keeps the last saved snapshot in memory.
type Store struct {
	mu      sync.Mutex
	records []record.Record
	saved   bool
	saveErr error
	saves   int
	closed  bool
}

// New creates an empty in-memory store. Load returns store.ErrNotFound
// until the first Save or SetRecords.
func New() *Store {
	return &Store{}
}

// SetRecords sets the stored snapshot (for test setup).
// The slice is copied to prevent caller mutations from affecting the store.
func (s *Store) SetRecords(records []record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]record.Record(nil), records...)
	s.saved = true
}

// FailSaves makes every following Save return err. A nil err restores normal saves.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Records returns a copy of the stored snapshot.
func (s *Store) Records() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record.Record(nil), s.records...)
}

// Saves returns the number of successful Save calls.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Load returns a copy of the stored snapshot.
func (s *Store) Load() ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return nil, store.ErrNotFound
	}
	return append([]record.Record(nil), s.records...), nil
}

// Save replaces the stored snapshot, unless FailSaves is in effect.
func (s *Store) Save(records []record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = append([]record.Record(nil), records...)
	s.saved = true
	s.saves++
	return nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
