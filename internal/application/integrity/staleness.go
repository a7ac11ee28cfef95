package integrity

import "github.com/ams/backend/internal/domain/address"

// IsPayloadUpToDate reports whether the stored validation metadata still
// matches the current address fingerprint. A never-checked extension is
// trivially up to date: there is nothing to compare against, and forcing a
// check here would be wasted work.
//
// The comparison uses a cheap checksum instead of the full canonical string
// because it runs on every address load. A checksum collision only suppresses
// one re-validation; it drives no security-sensitive decision.
func IsPayloadUpToDate(current address.FingerprintPayload, ext *address.AddressExtension) bool {
	if ext.IsNotChecked() {
		return true
	}
	return current.Checksum() == address.PayloadChecksum(ext.AMSRequestPayload)
}
