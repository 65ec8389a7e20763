package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// sweepInterval spaces out full scans for expired entries. Keys such as
// old explore pages are never read again, so lookup alone would keep them.
const sweepInterval = time.Minute

type memoryCache struct {
	mu        sync.Mutex
	items     map[string]entry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemory is a process-local cache for single instance deployments.
func NewMemory() Cache {
	return &memoryCache{items: map[string]entry{}, now: time.Now}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	return e.value, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
	}
	e := entry{value: value}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.items[key] = e
	return nil
}

// sweep drops every expired entry. Callers hold mu.
func (m *memoryCache) sweep(now time.Time) {
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
	m.lastSweep = now
}

func (m *memoryCache) Pull(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	delete(m.items, key)
	return e.value, ok, nil
}

func (m *memoryCache) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, _ := m.lookup(key)
	n, _ := strconv.ParseInt(e.value, 10, 64)
	n++
	e.value = strconv.FormatInt(n, 10)
	m.items[key] = e
	return n, nil
}

// lookup drops expired entries. Callers hold mu.
func (m *memoryCache) lookup(key string) (entry, bool) {
	e, ok := m.items[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(m.now()) {
		delete(m.items, key)
		return entry{}, false
	}
	return e, true
}
