package integrity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/domain/address"
)

func TestCountryMetadataResolver(t *testing.T) {
	ctx := context.Background()

	repo := newFakeCountryRepo()
	germanyID := uuid.New()
	usID := uuid.New()
	bogusID := uuid.New()
	repo.countries[germanyID] = &address.Country{ID: germanyID, ISO: "DE", Name: "Germany"}
	repo.countries[usID] = &address.Country{ID: usID, ISO: "US", Name: "United States"}
	repo.countries[bogusID] = &address.Country{ID: bogusID, ISO: "XX"}

	bavariaID := uuid.New()
	repo.subdivisions[bavariaID] = &address.CountrySubdivision{
		ID: bavariaID, CountryID: germanyID, ShortCode: "by", Name: "Bavaria",
	}

	resolver := NewCountryMetadataResolver(repo, zap.NewNop())

	t.Run("resolves ISO codes", func(t *testing.T) {
		assert.Equal(t, "DE", resolver.CountryCode(ctx, germanyID))
		assert.Equal(t, "US", resolver.CountryCode(ctx, usID))
	})

	t.Run("defaults to DE on failed or unrecognized lookups", func(t *testing.T) {
		assert.Equal(t, "DE", resolver.CountryCode(ctx, uuid.New()))
		assert.Equal(t, "DE", resolver.CountryCode(ctx, bogusID))
	})

	t.Run("uppercases subdivision short codes", func(t *testing.T) {
		code := resolver.SubdivisionCode(ctx, bavariaID)
		require.NotNil(t, code)
		assert.Equal(t, "BY", *code)
	})

	t.Run("unknown subdivision yields nil", func(t *testing.T) {
		assert.Nil(t, resolver.SubdivisionCode(ctx, uuid.New()))
	})

	t.Run("resolves subdivision id by code case-insensitively", func(t *testing.T) {
		id := resolver.SubdivisionIDByCode(ctx, germanyID, "BY")
		require.NotNil(t, id)
		assert.Equal(t, bavariaID, *id)
		assert.Nil(t, resolver.SubdivisionIDByCode(ctx, germanyID, "NW"))
	})

	t.Run("a single subdivision counts as no subdivisions", func(t *testing.T) {
		repo.counts[germanyID] = 1
		assert.False(t, resolver.HasSubdivisions(ctx, germanyID))

		repo.counts[germanyID] = 2
		assert.True(t, resolver.HasSubdivisions(ctx, germanyID))

		assert.False(t, resolver.HasSubdivisions(ctx, usID))
	})
}
