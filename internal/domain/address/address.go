package address

import (
	"encoding/json"

	"github.com/ams/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Address represents a customer or order address owned by the host
// application. Only the fields relevant for validation are modelled here.
type Address struct {
	shared.BaseEntity
	SalesChannelID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	CountryID              uuid.UUID  `gorm:"type:uuid;not null;index"`
	CountrySubdivisionID   *uuid.UUID `gorm:"type:uuid"`
	ZipCode                string     `gorm:"type:varchar(20);not null;default:''"`
	City                   string     `gorm:"type:varchar(100);not null;default:''"`
	Street                 string     `gorm:"type:varchar(255);not null;default:''"` // full street line
	AdditionalAddressLine1 string     `gorm:"type:varchar(255);not null;default:''"`
	Attributes             string     `gorm:"type:jsonb;not null;default:'{}'"` // payment metadata from the host

	Extension *AddressExtension `gorm:"foreignKey:AddressID;references:ID"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// NewAddress creates an address with a generated id.
func NewAddress(salesChannelID, countryID uuid.UUID, zipCode, city, street string) *Address {
	return &Address{
		BaseEntity:     shared.NewBaseEntity(),
		SalesChannelID: salesChannelID,
		CountryID:      countryID,
		ZipCode:        zipCode,
		City:           city,
		Street:         street,
		Attributes:     "{}",
	}
}

// SyncFrom copies the validatable fields from another instance of the same
// address, so repeated loads within one request converge on the values the
// first pass produced.
func (a *Address) SyncFrom(other *Address) {
	a.ZipCode = other.ZipCode
	a.City = other.City
	a.Street = other.Street
	a.CountrySubdivisionID = other.CountrySubdivisionID
	a.Extension = other.Extension
}

// Attribute keys the host's payment integrations leave on an address.
var (
	payPalAttributeKeys = []string{"payPalOrderId", "payPalExpressPayerId"}
	amazonAttributeKeys = []string{"amazonPayCheckoutSessionId", "amazonPayChargeId"}
)

// Provenance reports whether the address originated from a PayPal or
// Amazon Pay checkout, based on the payment metadata attributes.
func (a *Address) Provenance() (isPayPal, isAmazonPay bool) {
	if a.Attributes == "" {
		return false, false
	}
	var attrs map[string]any
	if err := json.Unmarshal([]byte(a.Attributes), &attrs); err != nil {
		return false, false
	}
	for _, key := range payPalAttributeKeys {
		if _, ok := attrs[key]; ok {
			isPayPal = true
			break
		}
	}
	for _, key := range amazonAttributeKeys {
		if _, ok := attrs[key]; ok {
			isAmazonPay = true
			break
		}
	}
	return isPayPal, isAmazonPay
}

// Country is the host's country record used for ISO code resolution.
type Country struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ISO  string    `gorm:"type:varchar(2);not null;index"`
	Name string    `gorm:"type:varchar(100);not null;default:''"`
}

// TableName returns the table name for GORM
func (Country) TableName() string {
	return "countries"
}

// CountrySubdivision is an administrative subdivision (state/province) of a
// country.
type CountrySubdivision struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CountryID uuid.UUID `gorm:"type:uuid;not null;index"`
	ShortCode string    `gorm:"type:varchar(10);not null"`
	Name      string    `gorm:"type:varchar(100);not null;default:''"`
}

// TableName returns the table name for GORM
func (CountrySubdivision) TableName() string {
	return "country_subdivisions"
}
