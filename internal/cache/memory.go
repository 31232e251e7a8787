package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry   Entry
	purgeAt time.Time
}

// MemoryStore is an in-process Store. Items are dropped once their
// retention has passed, either lazily on read or by Sweep.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()

	if !ok || !s.now().Before(item.purgeAt) {
		return Entry{}, false, nil
	}
	return item.entry, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, e Entry, keepFor time.Duration) error {
	s.mu.Lock()
	s.items[key] = memoryItem{entry: e, purgeAt: s.now().Add(keepFor)}
	s.mu.Unlock()
	return nil
}

// Sweep removes items past their retention and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, item := range s.items {
		if !now.Before(item.purgeAt) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored items, including ones awaiting a sweep.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// StartSweeper runs Sweep every interval until ctx is canceled.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
