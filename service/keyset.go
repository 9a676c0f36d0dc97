package service

import "sync"

// KeySet records which UPCs have been accepted during the life of the process.
type KeySet interface {
	// Claim marks key as seen. It returns false when key was already seen.
	// The check and the insert happen atomically.
	Claim(key string) bool
	Len() int
}

// MemoryKeySet is a mutex-guarded in-memory KeySet.
type MemoryKeySet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemoryKeySet returns an empty key set.
func NewMemoryKeySet() *MemoryKeySet {
	return &MemoryKeySet{keys: make(map[string]struct{})}
}

func (s *MemoryKeySet) Claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

func (s *MemoryKeySet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
