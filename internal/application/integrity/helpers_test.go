package integrity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ams/backend/internal/domain/address"
	"github.com/ams/backend/internal/domain/shared"
)

type fakeCountryRepo struct {
	countries    map[uuid.UUID]*address.Country
	subdivisions map[uuid.UUID]*address.CountrySubdivision
	counts       map[uuid.UUID]int64
}

func newFakeCountryRepo() *fakeCountryRepo {
	return &fakeCountryRepo{
		countries:    make(map[uuid.UUID]*address.Country),
		subdivisions: make(map[uuid.UUID]*address.CountrySubdivision),
		counts:       make(map[uuid.UUID]int64),
	}
}

func (r *fakeCountryRepo) FindByID(_ context.Context, id uuid.UUID) (*address.Country, error) {
	if c, ok := r.countries[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCountryRepo) FindSubdivisionByID(_ context.Context, id uuid.UUID) (*address.CountrySubdivision, error) {
	if s, ok := r.subdivisions[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCountryRepo) FindSubdivisionByCode(_ context.Context, countryID uuid.UUID, code string) (*address.CountrySubdivision, error) {
	for _, s := range r.subdivisions {
		if s.CountryID == countryID && strings.EqualFold(s.ShortCode, code) {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCountryRepo) CountSubdivisions(_ context.Context, countryID uuid.UUID) (int64, error) {
	return r.counts[countryID], nil
}

type fakeAddressRepo struct {
	addresses map[uuid.UUID]*address.Address
	updates   int
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addresses: make(map[uuid.UUID]*address.Address)}
}

func (r *fakeAddressRepo) FindByID(_ context.Context, id uuid.UUID) (*address.Address, error) {
	if a, ok := r.addresses[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAddressRepo) Update(_ context.Context, addr *address.Address) error {
	r.addresses[addr.ID] = addr
	r.updates++
	return nil
}

type fakeExtensionRepo struct {
	extensions map[uuid.UUID]*address.AddressExtension
	upserts    int
	updates    int
}

func newFakeExtensionRepo() *fakeExtensionRepo {
	return &fakeExtensionRepo{extensions: make(map[uuid.UUID]*address.AddressExtension)}
}

func (r *fakeExtensionRepo) FindByAddressID(_ context.Context, addressID uuid.UUID) (*address.AddressExtension, error) {
	if e, ok := r.extensions[addressID]; ok {
		return e, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeExtensionRepo) Upsert(_ context.Context, ext *address.AddressExtension) error {
	r.extensions[ext.AddressID] = ext
	r.upserts++
	return nil
}

func (r *fakeExtensionRepo) Update(_ context.Context, ext *address.AddressExtension) error {
	r.extensions[ext.AddressID] = ext
	r.updates++
	return nil
}

type fakeChecker struct {
	calls       int
	statuses    []string
	predictions []address.Prediction
	fail        bool
	fromCache   bool
}

func (c *fakeChecker) CheckAddress(_ context.Context, payload address.FingerprintPayload, sessionID string) address.CheckResult {
	c.calls++
	if sessionID == "" {
		sessionID = "11111111-2222-4333-8444-555555555555"
	}
	signature := payload.CanonicalString()
	if c.fail {
		return address.NewFailedCheckResult(sessionID, signature)
	}
	result := address.NewSuccessfulCheckResult(c.statuses, c.predictions, sessionID, signature)
	result.FromCache = c.fromCache
	return result
}

type fakeSplitter struct {
	calls          int
	streetName     string
	buildingNumber string
}

func (s *fakeSplitter) SplitStreet(_ context.Context, fullStreet string, additionalInfo *string, _ string, _ string) (address.SplitStreetResult, error) {
	s.calls++
	return address.SplitStreetResult{
		FullStreet:     fullStreet,
		StreetName:     s.streetName,
		BuildingNumber: s.buildingNumber,
		AdditionalInfo: additionalInfo,
	}, nil
}

type fakeAccountingClient struct {
	accounted   []string
	conversions int
	fail        bool
}

func (c *fakeAccountingClient) DoAccounting(_ context.Context, sessionID string) error {
	if c.fail {
		return shared.ErrInvalidState
	}
	c.accounted = append(c.accounted, sessionID)
	return nil
}

func (c *fakeAccountingClient) DoConversion(_ context.Context) error {
	c.conversions++
	return nil
}

func strPtr(s string) *string { return &s }
