// Package cache holds the shared counters the identifier generator draws
// from: Redis when it is reachable, process memory otherwise.
package cache

import (
	"context"
	"sync"
	"time"
)

// SequenceStore hands out monotonically increasing values per key. A key
// expires ttl after its last increment and then restarts at 1.
type SequenceStore interface {
	Next(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Close() error
}

type counter struct {
	value     int64
	expiresAt time.Time
}

// InMemorySequenceStore implements SequenceStore with a map. Values are not
// shared between processes; the generator's uniqueness check catches the
// resulting collisions.
type InMemorySequenceStore struct {
	mu        sync.Mutex
	counters  map[string]*counter
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySequenceStore creates a store and starts its expiry sweeper
func NewInMemorySequenceStore() *InMemorySequenceStore {
	s := &InMemorySequenceStore{
		counters: make(map[string]*counter),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop(10 * time.Minute)
	return s
}

// Next increments key and returns the new value
func (s *InMemorySequenceStore) Next(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = &counter{}
		s.counters[key] = c
	}
	c.value++
	c.expiresAt = now.Add(ttl)
	return c.value, nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemorySequenceStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of live keys
func (s *InMemorySequenceStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

func (s *InMemorySequenceStore) sweepLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemorySequenceStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, c := range s.counters {
		if !now.Before(c.expiresAt) {
			delete(s.counters, key)
		}
	}
}

var _ SequenceStore = (*InMemorySequenceStore)(nil)
