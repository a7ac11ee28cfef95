package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ams/backend/internal/domain/address"
	"github.com/ams/backend/internal/domain/shared"
)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds an address by its ID, including its extension record
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*address.Address, error) {
	var addr address.Address
	if err := r.db.WithContext(ctx).
		Preload("Extension").
		First(&addr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &addr, nil
}

// Update persists changes to an existing address. The extension record is
// written through its own repository, never as a side effect here.
func (r *GormAddressRepository) Update(ctx context.Context, addr *address.Address) error {
	result := r.db.WithContext(ctx).
		Omit("Extension").
		Model(&address.Address{}).
		Where("id = ?", addr.ID).
		Updates(map[string]any{
			"zip_code":                 addr.ZipCode,
			"city":                     addr.City,
			"street":                   addr.Street,
			"additional_address_line1": addr.AdditionalAddressLine1,
			"country_subdivision_id":   addr.CountrySubdivisionID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAddressRepository implements AddressRepository
var _ address.AddressRepository = (*GormAddressRepository)(nil)
