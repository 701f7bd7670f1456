package session

import (
	"context"
	"sync"
	"time"

	"shopbot/internal/order"
)

type memoryEntry struct {
	o       *order.Order
	expires time.Time
}

// memoryStore is the default backend. Expired entries are dropped lazily on
// read and swept opportunistically on write.
type memoryStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[int64]memoryEntry
	writes  int

	now func() time.Time // test hook
}

func newMemoryStore(ttl time.Duration) *memoryStore {
	return &memoryStore{
		ttl:     ttl,
		entries: make(map[int64]memoryEntry),
		now:     time.Now,
	}
}

func (s *memoryStore) PutLast(ctx context.Context, customerID int64, o *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[customerID] = memoryEntry{o: o, expires: s.now().Add(s.ttl)}
	s.writes++
	if s.writes%128 == 0 {
		s.sweepLocked()
	}
	return nil
}

func (s *memoryStore) GetLast(ctx context.Context, customerID int64) (*order.Order, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[customerID]
	if !ok {
		return nil, false, nil
	}
	if s.now().After(e.expires) {
		delete(s.entries, customerID)
		return nil, false, nil
	}
	return e.o, true, nil
}

func (s *memoryStore) sweepLocked() {
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
}

func (s *memoryStore) Close() error { return nil }
