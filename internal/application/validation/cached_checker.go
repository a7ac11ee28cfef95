package validation

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ams/backend/internal/domain/address"
	"github.com/ams/backend/internal/infrastructure/cache"
)

// checkResultTTL bounds how long a validation result is served from cache.
const checkResultTTL = time.Hour

// CachedAddressChecker decorates an AddressChecker with a cross-request cache
// keyed by the MD5 of the canonical fingerprint string.
type CachedAddressChecker struct {
	inner  AddressChecker
	cache  cache.TaggedCache
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedAddressChecker creates a caching decorator around the given checker.
func NewCachedAddressChecker(inner AddressChecker, taggedCache cache.TaggedCache, logger *zap.Logger) *CachedAddressChecker {
	return &CachedAddressChecker{
		inner:  inner,
		cache:  taggedCache,
		logger: logger,
	}
}

// CheckAddress returns a cached result when available and otherwise delegates
// to the wrapped checker. Concurrent callers for the same key share one
// remote call. Failed results are not cached so the next load retries.
func (c *CachedAddressChecker) CheckAddress(ctx context.Context, payload address.FingerprintPayload, sessionID string) address.CheckResult {
	key := checkCacheKey(payload)

	if cached, found := c.lookup(ctx, key); found {
		return cached
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if cached, found := c.lookup(ctx, key); found {
			return cached, nil
		}

		result := c.inner.CheckAddress(ctx, payload, sessionID)
		if result.IsSuccessful() {
			c.store(ctx, key, result)
		}
		return result, nil
	})

	return v.(address.CheckResult)
}

func (c *CachedAddressChecker) lookup(ctx context.Context, key string) (address.CheckResult, bool) {
	raw, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("check cache read failed", zap.Error(err))
		return address.CheckResult{}, false
	}
	if !found {
		return address.CheckResult{}, false
	}

	var result address.CheckResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.Warn("check cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return address.CheckResult{}, false
	}
	result.FromCache = true
	return result, true
}

func (c *CachedAddressChecker) store(ctx context.Context, key string, result address.CheckResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, string(data), checkResultTTL, TagAddressCheck); err != nil {
		c.logger.Warn("check cache write failed", zap.Error(err))
	}
}

// checkCacheKey derives the cache key from the canonical fingerprint string.
// MD5 is used for key derivation only and has no security role here.
func checkCacheKey(payload address.FingerprintPayload) string {
	sum := md5.Sum([]byte(payload.CanonicalString()))
	return "check:" + hex.EncodeToString(sum[:])
}

// Ensure CachedAddressChecker implements AddressChecker
var _ AddressChecker = (*CachedAddressChecker)(nil)
