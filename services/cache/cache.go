package cache

import (
	"time"

	"sjsage522/cardwatch/logger"
)

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// New returns a memcache service when addr is set and an in-process cache otherwise
func New(addr string) CacheService {
	if addr == "" {
		logger.ForCache().Info().Msg("using in-memory cache")
		return NewMemoryService()
	}
	logger.ForCache().Info().Str("addr", addr).Msg("using memcache")
	return NewMemcacheService(addr)
}
