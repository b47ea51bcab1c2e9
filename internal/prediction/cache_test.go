package prediction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

func TestMemoryCachePutGet(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	key := CacheKey{CardID: uuid.New(), Version: 42}
	pred := &domain.Prediction{CardID: key.CardID, ForgettingProbability: 55}

	_, ok := cache.Get(key)
	assert.False(t, ok)

	cache.Put(key, pred, time.Hour)

	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Same(t, pred, got)
}

func TestMemoryCacheVersionsAreIndependent(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	cardID := uuid.New()

	cache.Put(CacheKey{CardID: cardID, Version: 1}, &domain.Prediction{CardID: cardID}, time.Hour)

	// A new version marker misses even though the card is cached.
	_, ok := cache.Get(CacheKey{CardID: cardID, Version: 2})
	assert.False(t, ok)

	_, ok = cache.Get(CacheKey{CardID: cardID, Version: 1})
	assert.True(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	key := CacheKey{CardID: uuid.New(), Version: 1}
	cache.Put(key, &domain.Prediction{CardID: key.CardID}, time.Hour)

	// Just inside the TTL.
	now = now.Add(time.Hour)
	_, ok := cache.Get(key)
	assert.True(t, ok)

	// Just past it: the entry is gone and stays gone.
	now = now.Add(time.Nanosecond)
	_, ok = cache.Get(key)
	assert.False(t, ok)

	now = now.Add(-2 * time.Hour)
	_, ok = cache.Get(key)
	assert.False(t, ok)
}
