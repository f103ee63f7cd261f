package cache

import (
	"context"
	"sync"
	"time"
)

// MemorySet is the in-process ProcessedSet used when Redis is not configured.
type MemorySet struct {
	mu   sync.Mutex
	data map[string]time.Time
	now  func() time.Time
}

func NewMemorySet() *MemorySet {
	return &MemorySet{
		data: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (m *MemorySet) Close() error {
	return nil
}

func (m *MemorySet) IsProcessed(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && !m.now().Before(exp) {
		delete(m.data, key)
		return false, nil
	}
	return true, nil
}

// MarkProcessed stores key; a non-positive ttl never expires.
func (m *MemorySet) MarkProcessed(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.data[key] = exp
	return nil
}
