// Package memstore provides an ephemeral, thread-safe, in-memory
// implementation of the snapstore.Store interface, suitable for
// run-scoped checkpointing where durability is not required.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/gridvm/internal/snapstore"
)

// Store keeps checkpoint records in a mutex-guarded map.
type Store struct {
	mutex   sync.RWMutex
	records map[uint64]snapstore.Record
}

// New creates a new, empty in-memory checkpoint store.
func New() *Store {
	return &Store{records: make(map[uint64]snapstore.Record)}
}

// Put inserts or replaces the record for its tick.
func (s *Store) Put(ctx context.Context, rec snapstore.Record) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.records[rec.Tick] = rec
	return nil
}

// Get returns the record for a tick.
func (s *Store) Get(ctx context.Context, tick uint64) (snapstore.Record, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	rec, ok := s.records[tick]
	return rec, ok, nil
}

// Ticks returns all stored ticks in ascending order.
func (s *Store) Ticks(ctx context.Context) ([]uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]uint64, 0, len(s.records))
	for tick := range s.records {
		out = append(out, tick)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Delete removes the record for a tick.
func (s *Store) Delete(ctx context.Context, tick uint64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.records, tick)
	return nil
}
