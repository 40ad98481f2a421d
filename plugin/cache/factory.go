package cache

import (
	"fmt"
	"path/filepath"
	"time"
)

const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Open returns the cache backend named by backend. dataDir hosts the badger
// files under a "cache" subdirectory.
func Open(backend, dataDir string, ttl time.Duration) (Backend, error) {
	switch backend {
	case "", BackendMemory:
		return NewService(ServiceConfig{DefaultTTL: ttl}), nil
	case BackendBadger:
		return NewBadgerService(BadgerConfig{
			Path:       filepath.Join(dataDir, "cache"),
			DefaultTTL: ttl,
			GCInterval: 5 * time.Minute,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
