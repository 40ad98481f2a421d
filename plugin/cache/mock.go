package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockCacheService is an in-memory CacheService that records how it was used.
// Graph and service tests rely on the counters to assert cache hits and
// single-flight rebuilds.
type MockCacheService struct {
	mu    sync.RWMutex
	store map[string]*mockEntry

	gets          int
	sets          int
	invalidations int
	lastTTL       time.Duration

	// SetErr, when non-nil, is returned from every Set call.
	SetErr error
}

type mockEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMockCacheService creates a new MockCacheService.
func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		store: make(map[string]*mockEntry),
	}
}

// Get retrieves a value from cache.
func (m *MockCacheService) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++

	e, ok := m.store[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value in cache.
func (m *MockCacheService) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.lastTTL = ttl

	if m.SetErr != nil {
		return m.SetErr
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	m.store[key] = &mockEntry{value: value, expiresAt: expiresAt}
	return nil
}

// Invalidate invalidates cache entries.
func (m *MockCacheService) Invalidate(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations++

	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		for key := range m.store {
			if strings.HasPrefix(key, prefix) {
				delete(m.store, key)
			}
		}
		return nil
	}
	delete(m.store, pattern)
	return nil
}

// Close is a no-op.
func (m *MockCacheService) Close() error { return nil }

// Size returns the number of items in the cache.
func (m *MockCacheService) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// Gets returns how many Get calls were made.
func (m *MockCacheService) Gets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}

// Sets returns how many Set calls were made.
func (m *MockCacheService) Sets() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}

// Invalidations returns how many Invalidate calls were made.
func (m *MockCacheService) Invalidations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.invalidations
}

// LastTTL returns the ttl passed to the most recent Set.
func (m *MockCacheService) LastTTL() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastTTL
}

// Expire forces the entry under key to be treated as expired.
func (m *MockCacheService) Expire(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.store[key]; ok {
		e.expiresAt = time.Now().Add(-time.Second)
	}
}

var _ Backend = (*MockCacheService)(nil)
