package cache

import (
	"context"
	"time"
)

// TaggedCache is a cross-request cache keyed by content hash. Entries carry
// an explicit TTL and invalidation tags for bulk eviction.
type TaggedCache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value with a TTL and associates it with the given tags
	Set(ctx context.Context, key, value string, ttl time.Duration, tags ...string) error

	// InvalidateTag removes all entries associated with a tag
	InvalidateTag(ctx context.Context, tag string) error

	// Close releases resources held by the cache
	Close() error
}
