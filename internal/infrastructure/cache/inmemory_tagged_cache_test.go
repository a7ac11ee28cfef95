package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTaggedCache(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and retrieves values", func(t *testing.T) {
		cache := NewInMemoryTaggedCache()
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "key1", "value1", time.Minute, "tag1"))

		value, found, err := cache.Get(ctx, "key1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "value1", value)
	})

	t.Run("misses absent keys", func(t *testing.T) {
		cache := NewInMemoryTaggedCache()
		defer cache.Close()

		_, found, err := cache.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("expired entries are treated as absent", func(t *testing.T) {
		cache := NewInMemoryTaggedCache()
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "key1", "value1", -time.Second, "tag1"))

		_, found, err := cache.Get(ctx, "key1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("invalidates all entries of a tag", func(t *testing.T) {
		cache := NewInMemoryTaggedCache()
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "check1", "v1", time.Minute, "address_check"))
		require.NoError(t, cache.Set(ctx, "check2", "v2", time.Minute, "address_check"))
		require.NoError(t, cache.Set(ctx, "split1", "v3", time.Minute, "street_splitting"))

		require.NoError(t, cache.InvalidateTag(ctx, "address_check"))

		_, found, _ := cache.Get(ctx, "check1")
		assert.False(t, found)
		_, found, _ = cache.Get(ctx, "check2")
		assert.False(t, found)
		_, found, _ = cache.Get(ctx, "split1")
		assert.True(t, found)
	})

	t.Run("overwriting a key rebinds its tags", func(t *testing.T) {
		cache := NewInMemoryTaggedCache()
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "key1", "v1", time.Minute, "old_tag"))
		require.NoError(t, cache.Set(ctx, "key1", "v2", time.Minute, "new_tag"))

		require.NoError(t, cache.InvalidateTag(ctx, "old_tag"))
		value, found, _ := cache.Get(ctx, "key1")
		assert.True(t, found)
		assert.Equal(t, "v2", value)

		require.NoError(t, cache.InvalidateTag(ctx, "new_tag"))
		_, found, _ = cache.Get(ctx, "key1")
		assert.False(t, found)
	})

	t.Run("cleanup removes expired entries", func(t *testing.T) {
		cache := NewInMemoryTaggedCache()
		defer cache.Close()

		require.NoError(t, cache.Set(ctx, "key1", "v1", -time.Second, "tag1"))
		require.NoError(t, cache.Set(ctx, "key2", "v2", time.Minute, "tag1"))

		cache.cleanup()

		assert.Equal(t, 1, cache.Size())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		cache := NewInMemoryTaggedCache()
		require.NoError(t, cache.Close())
		require.NoError(t, cache.Close())
	})
}
