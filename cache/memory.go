package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store used in tests and as a fallback
// when Redis is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	// now is swappable so tests can step time past an entry's TTL.
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	b := make([]byte, len(value))
	copy(b, value)
	s.mu.Lock()
	s.entries[key] = entry{value: b, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

func (s *MemoryStore) Clear(ctx context.Context, key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// SetClock overrides the time source; tests use it to expire entries
// without sleeping.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}
