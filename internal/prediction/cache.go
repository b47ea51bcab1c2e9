package prediction

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// CacheKey identifies a cached prediction: the card plus the scheduling
// state's version marker. A scheduling mutation moves the marker, which makes
// every previously cached prediction for the card unreachable without any
// explicit invalidation.
type CacheKey struct {
	CardID  uuid.UUID
	Version int64
}

// Cache stores predictions with a per-entry TTL. Implementations must
// replace entries atomically as a whole; a single-node, possibly-stale cache
// is acceptable since predictions are advisory.
type Cache interface {
	Get(key CacheKey) (*domain.Prediction, bool)
	Put(key CacheKey, prediction *domain.Prediction, ttl time.Duration)
}

type cacheEntry struct {
	prediction *domain.Prediction
	expiresAt  time.Time
}

// MemoryCache is a process-local TTL cache. Expiry is lazy: stale entries
// are dropped when read, and superseded version keys are simply never read
// again. There is no background sweeper; the core computes on demand only.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[CacheKey]cacheEntry
	now     func() time.Time
}

// Ensure MemoryCache implements the Cache interface
var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty in-memory prediction cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[CacheKey]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached prediction for the key if present and unexpired.
func (c *MemoryCache) Get(key CacheKey) (*domain.Prediction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	return entry.prediction, true
}

// Put stores a prediction under the key for the given TTL, replacing any
// existing entry as a whole.
func (c *MemoryCache) Put(key CacheKey, prediction *domain.Prediction, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		prediction: prediction,
		expiresAt:  c.now().Add(ttl),
	}
}
