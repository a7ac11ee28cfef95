package validation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ams/backend/internal/domain/address"
	"github.com/ams/backend/internal/infrastructure/cache"
)

// splitResultTTL is long because street splits only change when the upstream
// splitting model does.
const splitResultTTL = 90 * 24 * time.Hour

// CachedStreetSplitter decorates a StreetSplitter with a cross-request cache
// keyed by the SHA-256 of (street, additional info, country).
type CachedStreetSplitter struct {
	inner  StreetSplitter
	cache  cache.TaggedCache
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedStreetSplitter creates a caching decorator around the given splitter.
func NewCachedStreetSplitter(inner StreetSplitter, taggedCache cache.TaggedCache, logger *zap.Logger) *CachedStreetSplitter {
	return &CachedStreetSplitter{
		inner:  inner,
		cache:  taggedCache,
		logger: logger,
	}
}

// SplitStreet returns a cached split when available and otherwise delegates
// to the wrapped splitter. Only successful splits are cached; a passthrough
// fallback must not suppress retries for 90 days.
func (s *CachedStreetSplitter) SplitStreet(ctx context.Context, fullStreet string, additionalInfo *string, countryCode, sessionID string) (address.SplitStreetResult, error) {
	key := splitCacheKey(fullStreet, additionalInfo, countryCode)

	if cached, found := s.lookup(ctx, key); found {
		return cached, nil
	}

	type outcome struct {
		result address.SplitStreetResult
		err    error
	}
	v, _, _ := s.group.Do(key, func() (any, error) {
		if cached, found := s.lookup(ctx, key); found {
			return outcome{result: cached}, nil
		}

		result, err := s.inner.SplitStreet(ctx, fullStreet, additionalInfo, countryCode, sessionID)
		if err == nil {
			s.store(ctx, key, result)
		}
		return outcome{result: result, err: err}, nil
	})

	o := v.(outcome)
	return o.result, o.err
}

func (s *CachedStreetSplitter) lookup(ctx context.Context, key string) (address.SplitStreetResult, bool) {
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("split cache read failed", zap.Error(err))
		return address.SplitStreetResult{}, false
	}
	if !found {
		return address.SplitStreetResult{}, false
	}

	var result address.SplitStreetResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		s.logger.Warn("split cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return address.SplitStreetResult{}, false
	}
	return result, true
}

func (s *CachedStreetSplitter) store(ctx context.Context, key string, result address.SplitStreetResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), splitResultTTL, TagStreetSplitting); err != nil {
		s.logger.Warn("split cache write failed", zap.Error(err))
	}
}

// splitCacheKey derives the cache key from the canonical JSON of the split
// input. A nil additional info is encoded as the literal "null" so it stays
// distinguishable from an empty string.
func splitCacheKey(fullStreet string, additionalInfo *string, countryCode string) string {
	info := "null"
	if additionalInfo != nil {
		info = *additionalInfo
	}
	canonical, _ := json.Marshal(struct {
		FullStreet     string `json:"fullStreet"`
		AdditionalInfo string `json:"additionalInfo"`
		CountryCode    string `json:"countryCode"`
	}{fullStreet, info, countryCode})

	sum := sha256.Sum256(canonical)
	return "split:" + hex.EncodeToString(sum[:])
}

// Ensure CachedStreetSplitter implements StreetSplitter
var _ StreetSplitter = (*CachedStreetSplitter)(nil)
