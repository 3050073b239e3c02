package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryCache is an unbounded map. Entries only leave through Delete or an
// elapsed ttl.
type memoryCache struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	namespace string
	now       func() time.Time
}

func NewMemoryCache(namespace string) Cache {
	return &memoryCache{
		entries:   make(map[string]memoryEntry),
		namespace: namespace,
		now:       time.Now,
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || e.expired(m.now()) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Keys(_ context.Context, prefix string) ([]string, error) {
	now := m.now()
	m.mu.RLock()
	keys := make([]string, 0, len(m.entries))
	for k, e := range m.entries {
		if strings.HasPrefix(k, prefix) && !e.expired(now) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.namespace, operation, key)
}

func (m *memoryCache) Close() error { return nil }
