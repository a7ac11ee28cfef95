package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ams/backend/internal/domain/address"
	"github.com/ams/backend/internal/domain/shared"
)

// GormExtensionRepository implements ExtensionRepository using GORM
type GormExtensionRepository struct {
	db *gorm.DB
}

// NewGormExtensionRepository creates a new GormExtensionRepository
func NewGormExtensionRepository(db *gorm.DB) *GormExtensionRepository {
	return &GormExtensionRepository{db: db}
}

// FindByAddressID finds the extension record for an address
func (r *GormExtensionRepository) FindByAddressID(ctx context.Context, addressID uuid.UUID) (*address.AddressExtension, error) {
	var ext address.AddressExtension
	if err := r.db.WithContext(ctx).
		First(&ext, "address_id = ?", addressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ext, nil
}

// Upsert creates or replaces an extension record. Two concurrent first
// passes for the same address collapse into one row.
func (r *GormExtensionRepository) Upsert(ctx context.Context, ext *address.AddressExtension) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address_id"}},
			UpdateAll: true,
		}).
		Create(ext).Error
}

// Update persists changes to an existing extension record
func (r *GormExtensionRepository) Update(ctx context.Context, ext *address.AddressExtension) error {
	result := r.db.WithContext(ctx).
		Model(&address.AddressExtension{}).
		Where("address_id = ?", ext.AddressID).
		Updates(map[string]any{
			"ams_status":            ext.AMSStatus,
			"ams_timestamp":         ext.AMSTimestamp,
			"ams_predictions":       ext.AMSPredictions,
			"ams_request_payload":   ext.AMSRequestPayload,
			"street":                ext.Street,
			"house_number":          ext.HouseNumber,
			"is_pay_pal_address":    ext.IsPayPalAddress,
			"is_amazon_pay_address": ext.IsAmazonPayAddress,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormExtensionRepository implements ExtensionRepository
var _ address.ExtensionRepository = (*GormExtensionRepository)(nil)
