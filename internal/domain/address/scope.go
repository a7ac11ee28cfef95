package address

// CorrectionScope decides which parts of an address a validation correction
// may overwrite. Extension fields are always writable; native fields are
// writable only when the host configuration allows it and the address did not
// come from Amazon Pay. PayPal addresses are deliberately not protected:
// they may still be auto-corrected in native fields.
type CorrectionScope struct {
	canWriteNative bool
}

// BuildCorrectionScope resolves the scope for the given extension record.
func BuildCorrectionScope(ext *AddressExtension, allowNativeOverwrite bool) CorrectionScope {
	return CorrectionScope{
		canWriteNative: allowNativeOverwrite && !ext.IsAmazonPayAddress,
	}
}

// CanWriteNative reports whether native address fields may be overwritten.
func (s CorrectionScope) CanWriteNative() bool {
	return s.canWriteNative
}

// CanWriteExtension reports whether extension fields may be written.
func (s CorrectionScope) CanWriteExtension() bool {
	return true
}
