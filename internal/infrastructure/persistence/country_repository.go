package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ams/backend/internal/domain/address"
	"github.com/ams/backend/internal/domain/shared"
)

// GormCountryRepository implements CountryRepository using GORM
type GormCountryRepository struct {
	db *gorm.DB
}

// NewGormCountryRepository creates a new GormCountryRepository
func NewGormCountryRepository(db *gorm.DB) *GormCountryRepository {
	return &GormCountryRepository{db: db}
}

// FindByID finds a country by its internal identifier
func (r *GormCountryRepository) FindByID(ctx context.Context, id uuid.UUID) (*address.Country, error) {
	var country address.Country
	if err := r.db.WithContext(ctx).First(&country, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &country, nil
}

// FindSubdivisionByID finds a subdivision by its internal identifier
func (r *GormCountryRepository) FindSubdivisionByID(ctx context.Context, id uuid.UUID) (*address.CountrySubdivision, error) {
	var subdivision address.CountrySubdivision
	if err := r.db.WithContext(ctx).First(&subdivision, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &subdivision, nil
}

// FindSubdivisionByCode finds a subdivision of a country by its short code
func (r *GormCountryRepository) FindSubdivisionByCode(ctx context.Context, countryID uuid.UUID, code string) (*address.CountrySubdivision, error) {
	var subdivision address.CountrySubdivision
	if err := r.db.WithContext(ctx).
		Where("country_id = ? AND upper(short_code) = ?", countryID, strings.ToUpper(code)).
		First(&subdivision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &subdivision, nil
}

// CountSubdivisions returns the number of subdivisions of a country
func (r *GormCountryRepository) CountSubdivisions(ctx context.Context, countryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&address.CountrySubdivision{}).
		Where("country_id = ?", countryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCountryRepository implements CountryRepository
var _ address.CountryRepository = (*GormCountryRepository)(nil)
