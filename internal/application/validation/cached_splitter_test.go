package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/domain/address"
	"github.com/ams/backend/internal/infrastructure/cache"
)

type countingSplitter struct {
	calls int
	fail  bool
}

func (s *countingSplitter) SplitStreet(ctx context.Context, fullStreet string, additionalInfo *string, countryCode, sessionID string) (address.SplitStreetResult, error) {
	s.calls++
	if s.fail {
		return address.NewUnsplitStreetResult(fullStreet, additionalInfo), errors.New("remote down")
	}
	return address.SplitStreetResult{
		FullStreet:     fullStreet,
		StreetName:     "Musterstraße",
		BuildingNumber: "42",
		AdditionalInfo: additionalInfo,
	}, nil
}

func TestCachedStreetSplitter(t *testing.T) {
	ctx := context.Background()

	t.Run("identical arguments trigger at most one remote call", func(t *testing.T) {
		inner := &countingSplitter{}
		store := cache.NewInMemoryTaggedCache()
		defer store.Close()
		splitter := NewCachedStreetSplitter(inner, store, zap.NewNop())

		first, err := splitter.SplitStreet(ctx, "Musterstraße 42", nil, "DE", "")
		require.NoError(t, err)
		second, err := splitter.SplitStreet(ctx, "Musterstraße 42", nil, "DE", "")
		require.NoError(t, err)

		assert.Equal(t, 1, inner.calls)
		assert.Equal(t, first, second)
	})

	t.Run("nil and empty additional info use distinct keys", func(t *testing.T) {
		inner := &countingSplitter{}
		store := cache.NewInMemoryTaggedCache()
		defer store.Close()
		splitter := NewCachedStreetSplitter(inner, store, zap.NewNop())

		empty := ""
		_, _ = splitter.SplitStreet(ctx, "Musterstraße 42", nil, "DE", "")
		_, _ = splitter.SplitStreet(ctx, "Musterstraße 42", &empty, "DE", "")

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("fallback results are not cached", func(t *testing.T) {
		inner := &countingSplitter{fail: true}
		store := cache.NewInMemoryTaggedCache()
		defer store.Close()
		splitter := NewCachedStreetSplitter(inner, store, zap.NewNop())

		res, err := splitter.SplitStreet(ctx, "Musterstraße 42", nil, "DE", "")
		assert.Error(t, err)
		assert.Equal(t, "Musterstraße 42", res.StreetName)

		_, _ = splitter.SplitStreet(ctx, "Musterstraße 42", nil, "DE", "")
		assert.Equal(t, 2, inner.calls)
	})
}
