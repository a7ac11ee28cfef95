package address

// SplitStreetResult holds the structured components of a free-text street.
type SplitStreetResult struct {
	FullStreet     string  `json:"fullStreet"`
	StreetName     string  `json:"streetName"`
	BuildingNumber string  `json:"buildingNumber"`
	AdditionalInfo *string `json:"additionalInfo,omitempty"`
}

// NewUnsplitStreetResult returns the degraded result used when splitting is
// unavailable: the street name defaults to the untouched input and the
// building number stays empty.
func NewUnsplitStreetResult(fullStreet string, additionalInfo *string) SplitStreetResult {
	return SplitStreetResult{
		FullStreet:     fullStreet,
		StreetName:     fullStreet,
		BuildingNumber: "",
		AdditionalInfo: additionalInfo,
	}
}
