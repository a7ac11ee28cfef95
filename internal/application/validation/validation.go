// Package validation provides the caching layer around the remote address
// validation service. The decorators consult a cross-request tagged cache
// before any network call; a cache hit short-circuits entirely.
package validation

import (
	"context"

	"github.com/ams/backend/internal/domain/address"
)

// AddressChecker validates an address fingerprint against the remote service.
type AddressChecker interface {
	CheckAddress(ctx context.Context, payload address.FingerprintPayload, sessionID string) address.CheckResult
}

// StreetSplitter splits a free-text street into structured components. The
// returned result is always usable; a non-nil error only signals that the
// result is the unmodified passthrough.
type StreetSplitter interface {
	SplitStreet(ctx context.Context, fullStreet string, additionalInfo *string, countryCode, sessionID string) (address.SplitStreetResult, error)
}

// Cache invalidation tags.
const (
	TagAddressCheck    = "address_check"
	TagStreetSplitting = "street_splitting"
)
