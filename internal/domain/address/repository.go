package address

import (
	"context"

	"github.com/google/uuid"
)

// AddressRepository defines the interface for address persistence
type AddressRepository interface {
	// FindByID finds an address by its ID, including its extension record
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)

	// Update persists changes to an existing address
	Update(ctx context.Context, addr *Address) error
}

// ExtensionRepository defines the interface for extension record persistence
type ExtensionRepository interface {
	// FindByAddressID finds the extension record for an address
	FindByAddressID(ctx context.Context, addressID uuid.UUID) (*AddressExtension, error)

	// Upsert creates or replaces an extension record
	Upsert(ctx context.Context, ext *AddressExtension) error

	// Update persists changes to an existing extension record
	Update(ctx context.Context, ext *AddressExtension) error
}

// CountryRepository defines the read-only lookups against the host's country
// and subdivision data
type CountryRepository interface {
	// FindByID finds a country by its internal identifier
	FindByID(ctx context.Context, id uuid.UUID) (*Country, error)

	// FindSubdivisionByID finds a subdivision by its internal identifier
	FindSubdivisionByID(ctx context.Context, id uuid.UUID) (*CountrySubdivision, error)

	// FindSubdivisionByCode finds a subdivision of a country by its short code
	FindSubdivisionByCode(ctx context.Context, countryID uuid.UUID, code string) (*CountrySubdivision, error)

	// CountSubdivisions returns the number of subdivisions of a country
	CountSubdivisions(ctx context.Context, countryID uuid.UUID) (int64, error)
}
