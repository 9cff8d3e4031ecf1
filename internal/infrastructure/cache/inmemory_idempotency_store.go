package cache

import (
	"context"
	"sync"
	"time"

	"github.com/comercia/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps processed idempotency keys in a map with
// per-key expiry. It serves single-instance deployments and tests; keys do
// not survive a restart, so clustered deployments use the redis store.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	deadlines map[string]time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore builds the store and starts a janitor
// goroutine that evicts expired keys every few minutes
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		deadlines: make(map[string]time.Time),
		stopChan:  make(chan struct{}),
	}

	store.wg.Add(1)
	go store.janitor()

	return store
}

// MarkProcessed records the key for the given TTL. It returns false when the
// key is already live, which is the duplicate-request signal.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, exists := s.deadlines[key]; exists && now.Before(deadline) {
		return false, nil
	}

	s.deadlines[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether the key is live. Expired keys count as unseen.
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deadline, exists := s.deadlines[key]
	return exists && time.Now().Before(deadline), nil
}

// Close stops the janitor. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) janitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, deadline := range s.deadlines {
		if now.After(deadline) {
			delete(s.deadlines, key)
		}
	}
}

// Size returns the number of stored keys, expired ones included
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deadlines)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
