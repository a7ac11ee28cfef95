package integrity

import (
	"context"
	"strings"

	"github.com/biter777/countries"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/domain/address"
)

// DefaultCountryCode is used whenever a country lookup fails or yields no
// usable ISO code.
const DefaultCountryCode = "DE"

// CountryMetadataResolver resolves ISO country codes and subdivision codes
// from the host's internal identifiers. All lookups are read-only.
type CountryMetadataResolver struct {
	repo   address.CountryRepository
	logger *zap.Logger
}

// NewCountryMetadataResolver creates a new resolver.
func NewCountryMetadataResolver(repo address.CountryRepository, logger *zap.Logger) *CountryMetadataResolver {
	return &CountryMetadataResolver{
		repo:   repo,
		logger: logger,
	}
}

// CountryCode resolves the ISO-2 code of a country, defaulting to DE when the
// lookup fails or the stored code is not a known country.
func (r *CountryMetadataResolver) CountryCode(ctx context.Context, countryID uuid.UUID) string {
	country, err := r.repo.FindByID(ctx, countryID)
	if err != nil || country.ISO == "" {
		return DefaultCountryCode
	}
	cc := countries.ByName(country.ISO)
	if cc == countries.Unknown {
		r.logger.Warn("country has an unrecognized ISO code, falling back",
			zap.String("country_id", countryID.String()),
			zap.String("iso", country.ISO),
		)
		return DefaultCountryCode
	}
	return cc.Alpha2()
}

// SubdivisionCode resolves the uppercase short code of a subdivision, or nil
// when the subdivision is unknown.
func (r *CountryMetadataResolver) SubdivisionCode(ctx context.Context, subdivisionID uuid.UUID) *string {
	subdivision, err := r.repo.FindSubdivisionByID(ctx, subdivisionID)
	if err != nil {
		return nil
	}
	code := strings.ToUpper(subdivision.ShortCode)
	return &code
}

// SubdivisionIDByCode resolves the internal identifier of a subdivision by
// its short code, or nil when none matches.
func (r *CountryMetadataResolver) SubdivisionIDByCode(ctx context.Context, countryID uuid.UUID, code string) *uuid.UUID {
	subdivision, err := r.repo.FindSubdivisionByCode(ctx, countryID, code)
	if err != nil {
		return nil
	}
	return &subdivision.ID
}

// HasSubdivisions reports whether the country has administrative
// subdivisions. A country with exactly 0 or 1 subdivision counts as having
// none; the threshold is a long-standing upstream convention and must not
// change without a data migration of stored fingerprints.
func (r *CountryMetadataResolver) HasSubdivisions(ctx context.Context, countryID uuid.UUID) bool {
	count, err := r.repo.CountSubdivisions(ctx, countryID)
	if err != nil {
		return false
	}
	return count > 1
}
