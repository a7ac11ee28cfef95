package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/domain/address"
	"github.com/ams/backend/internal/infrastructure/cache"
)

type countingChecker struct {
	calls  int
	result address.CheckResult
}

func (c *countingChecker) CheckAddress(ctx context.Context, payload address.FingerprintPayload, sessionID string) address.CheckResult {
	c.calls++
	res := c.result
	res.AddressSignature = payload.CanonicalString()
	res.UsedSessionID = sessionID
	return res
}

func testFingerprint() address.FingerprintPayload {
	return address.NewFingerprint("DE", "de", "10115", "Berlin", "Musterstr. 1", nil)
}

func TestCachedAddressChecker(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit avoids a second remote call", func(t *testing.T) {
		inner := &countingChecker{result: address.NewSuccessfulCheckResult(
			[]string{address.StatusAddressCorrect}, nil, "", "")}
		store := cache.NewInMemoryTaggedCache()
		defer store.Close()
		checker := NewCachedAddressChecker(inner, store, zap.NewNop())

		first := checker.CheckAddress(ctx, testFingerprint(), "session-1")
		second := checker.CheckAddress(ctx, testFingerprint(), "session-2")

		assert.Equal(t, 1, inner.calls)
		require.True(t, first.IsSuccessful())
		require.True(t, second.IsSuccessful())
		// The cached result is served verbatim, including the original session.
		assert.Equal(t, "session-1", second.UsedSessionID)
		// Only cache-served results are flagged, so callers can tell that the
		// session was already accounted.
		assert.False(t, first.FromCache)
		assert.True(t, second.FromCache)
	})

	t.Run("different fingerprints do not share entries", func(t *testing.T) {
		inner := &countingChecker{result: address.NewSuccessfulCheckResult(
			[]string{address.StatusAddressCorrect}, nil, "", "")}
		store := cache.NewInMemoryTaggedCache()
		defer store.Close()
		checker := NewCachedAddressChecker(inner, store, zap.NewNop())

		checker.CheckAddress(ctx, testFingerprint(), "s")
		other := address.NewFingerprint("DE", "de", "80331", "München", "Marienplatz 1", nil)
		checker.CheckAddress(ctx, other, "s")

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("failed results are not cached", func(t *testing.T) {
		inner := &countingChecker{result: address.NewFailedCheckResult("", "")}
		store := cache.NewInMemoryTaggedCache()
		defer store.Close()
		checker := NewCachedAddressChecker(inner, store, zap.NewNop())

		checker.CheckAddress(ctx, testFingerprint(), "s")
		checker.CheckAddress(ctx, testFingerprint(), "s")

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("tag invalidation forces a fresh call", func(t *testing.T) {
		inner := &countingChecker{result: address.NewSuccessfulCheckResult(
			[]string{address.StatusAddressCorrect}, nil, "", "")}
		store := cache.NewInMemoryTaggedCache()
		defer store.Close()
		checker := NewCachedAddressChecker(inner, store, zap.NewNop())

		checker.CheckAddress(ctx, testFingerprint(), "s")
		require.NoError(t, store.InvalidateTag(ctx, TagAddressCheck))
		checker.CheckAddress(ctx, testFingerprint(), "s")

		assert.Equal(t, 2, inner.calls)
	})
}
