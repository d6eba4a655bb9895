package vantage

import (
	"sort"
	"sync"
)

// Store caches analysis records for presentation code and tracks which
// analysis the caller is currently focused on. It is safe for
// concurrent use; callers inject it rather than sharing a global.
type Store struct {
	mu        sync.RWMutex
	records   map[string]Analysis
	currentID string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: map[string]Analysis{}}
}

// Put replaces the cached record for its ID.
func (s *Store) Put(a Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[a.ID] = a
}

// Get returns the cached record and whether it exists.
func (s *Store) Get(id string) (Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.records[id]
	return a, ok
}

// Remove drops the cached record. If the removed analysis was current,
// the current selection is cleared.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	if s.currentID == id {
		s.currentID = ""
	}
}

// SetCurrent marks the analysis the caller is focused on.
func (s *Store) SetCurrent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = id
}

// Current returns the focused record, if any.
func (s *Store) Current() (Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentID == "" {
		return Analysis{}, false
	}
	a, ok := s.records[s.currentID]
	return a, ok
}

// List returns all cached records, newest first.
func (s *Store) List() []Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Analysis, 0, len(s.records))
	for _, a := range s.records {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
