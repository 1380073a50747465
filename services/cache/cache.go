package cache

import (
	"time"
)

// CacheService is the process-external cache used to remember hosts that
// answered 429 so a blocked host is not contacted again across runs.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// BlockKey returns the cache key under which a rate-limited host is recorded.
func BlockKey(host string) string {
	return "block:" + host
}
