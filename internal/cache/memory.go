package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

const janitorInterval = time.Minute

// MemoryStore is a process-local TTL cache. Expired entries are treated as
// absent on read and swept periodically by a janitor goroutine.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   func() time.Time
	tick    *time.Ticker
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore constructs an in-memory Store and starts its janitor.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   time.Now,
		tick:    time.NewTicker(janitorInterval),
	}

	go s.janitor()
	return s
}

func (s *MemoryStore) janitor() {
	for range s.tick.C {
		now := s.clock()
		s.mu.Lock()
		for key, entry := range s.entries {
			if now.After(entry.expiresAt) {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
}

// Get returns the cached value, reporting absence both for unknown keys and
// for entries whose TTL has elapsed.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.clock().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores a value with the supplied TTL, replacing any prior entry wholesale.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	s.mu.Lock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.clock().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes the supplied keys, ignoring missing ones.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix.
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
	return nil
}

// Close stops the janitor.
func (s *MemoryStore) Close() {
	s.tick.Stop()
}
