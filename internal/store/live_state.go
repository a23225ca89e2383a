package store

import (
	"sync"

	"github.com/Owoblo/exam-monitor/internal/domain"
)

// MemoryLiveStateStore is an in-memory LiveStateStore. Entries are stored and
// handed out by value, so readers never observe a half-written entry.
// Entries are never evicted.
type MemoryLiveStateStore struct {
	entries map[string]domain.LiveStateEntry // studentID -> entry
	mu      sync.RWMutex
}

// NewMemoryLiveStateStore creates an empty store.
func NewMemoryLiveStateStore() *MemoryLiveStateStore {
	return &MemoryLiveStateStore{
		entries: make(map[string]domain.LiveStateEntry),
	}
}

// Update replaces the entry for studentID and returns what was stored.
func (s *MemoryLiveStateStore) Update(studentID string, entry domain.LiveStateEntry) domain.LiveStateEntry {
	s.mu.Lock()
	s.entries[studentID] = entry
	s.mu.Unlock()
	return entry
}

// Get returns the current entry for studentID.
func (s *MemoryLiveStateStore) Get(studentID string) (domain.LiveStateEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[studentID]
	return entry, ok
}

// Snapshot returns a copy of every entry.
func (s *MemoryLiveStateStore) Snapshot() map[string]domain.LiveStateEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.LiveStateEntry, len(s.entries))
	for id, entry := range s.entries {
		result[id] = entry
	}
	return result
}

// Len returns the number of students with live state.
func (s *MemoryLiveStateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ LiveStateStore = (*MemoryLiveStateStore)(nil)
