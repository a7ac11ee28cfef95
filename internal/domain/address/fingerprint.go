package address

import (
	"encoding/json"
	"hash/crc32"
)

// FingerprintPayload is the canonical representation of the validatable parts
// of an address. It doubles as the request body for the remote address check
// and as the change-detection fingerprint stored on the extension record.
//
// SubdivisionCode is tri-state: nil means the country has no administrative
// subdivisions, an empty string means subdivisions exist but none was chosen,
// and a concrete code means one was chosen. The serialized form omits the key
// entirely in the nil case, so an address whose country gained subdivision
// support is detected as changed.
type FingerprintPayload struct {
	Country         string  `json:"country"`
	Language        string  `json:"language"`
	PostCode        string  `json:"postCode"`
	CityName        string  `json:"cityName"`
	StreetFull      string  `json:"streetFull"`
	SubdivisionCode *string `json:"subdivisionCode,omitempty"`
}

// NewFingerprint creates a fingerprint payload from raw address fields.
// All string fields must be non-nil; empty values are allowed.
func NewFingerprint(country, language, postCode, cityName, streetFull string, subdivisionCode *string) FingerprintPayload {
	return FingerprintPayload{
		Country:         country,
		Language:        language,
		PostCode:        postCode,
		CityName:        cityName,
		StreetFull:      streetFull,
		SubdivisionCode: subdivisionCode,
	}
}

// CanonicalString serializes the payload deterministically. Two payloads with
// identical semantic content always serialize identically because the key
// order is fixed by the struct definition.
func (p FingerprintPayload) CanonicalString() string {
	// Marshalling a flat struct of strings cannot fail.
	data, _ := json.Marshal(p)
	return string(data)
}

// Checksum returns a cheap rolling checksum of the canonical form. It is used
// for staleness comparison only and carries no security role.
func (p FingerprintPayload) Checksum() uint32 {
	return PayloadChecksum(p.CanonicalString())
}

// PayloadChecksum computes the checksum of an already-serialized payload.
func PayloadChecksum(canonical string) uint32 {
	return crc32.ChecksumIEEE([]byte(canonical))
}
