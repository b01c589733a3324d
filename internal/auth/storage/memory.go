package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage implements the Store interface using in-memory storage.
// Suitable for single-instance deployments only; revocations do not survive
// a restart, which at worst re-admits tokens until their natural expiry.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStorage creates a new memory storage instance with a background
// sweeper that drops expired entries.
func NewMemoryStorage() *MemoryStorage {
	s := &MemoryStorage{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Revoke records a token id until its expiry passes
func (s *MemoryStorage) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether a token id is on the denylist
func (s *MemoryStorage) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.entries[jti]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		s.mu.Lock()
		delete(s.entries, jti)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Close stops the background sweeper
func (s *MemoryStorage) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *MemoryStorage) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for jti, expiry := range s.entries {
				if now.After(expiry) {
					delete(s.entries, jti)
				}
			}
			s.mu.Unlock()
		}
	}
}
