package address

import "time"

// Validation status codes returned by the remote address check.
const (
	StatusAddressCorrect         = "address_correct"
	StatusMinorCorrection        = "address_minor_correction"
	StatusNeedsCorrection        = "address_needs_correction"
	StatusMultipleVariants       = "address_multiple_variants"
	StatusNotFound               = "address_not_found"
	StatusSelectedAutomatically  = "address_selected_automatically"
	StatusCountryCodeCorrect     = "country_code_correct"
	StatusSubdivisionCodeCorrect = "subdivision_code_correct"
	StatusPostalCodeCorrect      = "postal_code_correct"
	StatusLocalityCorrect        = "locality_correct"
	StatusStreetNameCorrect      = "street_name_correct"
	StatusBuildingNumberCorrect  = "building_number_correct"
	StatusAdditionalInfoCorrect  = "additional_info_correct"

	// StatusCodeFullyCorrect is the remote service's aggregate code for a
	// fully correct address.
	StatusCodeFullyCorrect = "A1000"
)

// Prediction is a single correction candidate returned by the remote check,
// with field names normalized to the local vocabulary.
type Prediction struct {
	CountryCode     string  `json:"countryCode"`
	PostalCode      string  `json:"postalCode"`
	Locality        string  `json:"locality"`
	StreetName      string  `json:"streetName"`
	BuildingNumber  string  `json:"buildingNumber"`
	AdditionalInfo  *string `json:"additionalInfo,omitempty"`
	SubdivisionCode *string `json:"subdivisionCode,omitempty"`
}

// IsComplete reports whether all core fields are populated, which is the
// precondition for applying the prediction as an automatic correction.
func (p Prediction) IsComplete() bool {
	return p.CountryCode != "" &&
		p.PostalCode != "" &&
		p.Locality != "" &&
		p.StreetName != "" &&
		p.BuildingNumber != ""
}

// CheckResult is the outcome of one remote address check. A failed result
// still carries the session id and the address signature so that staleness
// detection keeps working after a failed call.
type CheckResult struct {
	Successful       bool         `json:"successful"`
	Statuses         []string     `json:"statuses"`
	Predictions      []Prediction `json:"predictions"`
	Timestamp        int64        `json:"timestamp"`
	UsedSessionID    string       `json:"usedSessionId"`
	AddressSignature string       `json:"addressSignature"`

	// FromCache marks a result served from the cross-request cache. Its
	// session id was already reported by the request that stored the entry,
	// so accounting must not pick it up again.
	FromCache bool `json:"-"`
}

// NewSuccessfulCheckResult creates a successful result stamped with the
// current time.
func NewSuccessfulCheckResult(statuses []string, predictions []Prediction, sessionID, signature string) CheckResult {
	return CheckResult{
		Successful:       true,
		Statuses:         statuses,
		Predictions:      predictions,
		Timestamp:        time.Now().Unix(),
		UsedSessionID:    sessionID,
		AddressSignature: signature,
	}
}

// NewFailedCheckResult creates a failed result.
func NewFailedCheckResult(sessionID, signature string) CheckResult {
	return CheckResult{
		Successful:       false,
		Statuses:         []string{},
		Predictions:      []Prediction{},
		UsedSessionID:    sessionID,
		AddressSignature: signature,
	}
}

// IsSuccessful reports whether the remote check produced a result.
func (r CheckResult) IsSuccessful() bool {
	return r.Successful
}

// HasStatus reports whether the result carries the given status code.
func (r CheckResult) HasStatus(code string) bool {
	for _, s := range r.Statuses {
		if s == code {
			return true
		}
	}
	return false
}

// IsAutomaticCorrection reports whether the result qualifies for automatic
// correction of the address, i.e. the remote service found only a minor
// deviation.
func (r CheckResult) IsAutomaticCorrection() bool {
	return r.Successful && r.HasStatus(StatusMinorCorrection)
}

// GenerateStatusesForAutomaticCorrection builds the status list persisted
// after the first prediction has been applied to the address. Field-level
// correctness markers are emitted only for fields the prediction carries,
// and the automatic-selection marker is appended last.
func (r CheckResult) GenerateStatusesForAutomaticCorrection() []string {
	if len(r.Predictions) == 0 {
		return r.Statuses
	}
	p := r.Predictions[0]

	statuses := []string{
		StatusAddressCorrect,
		StatusCodeFullyCorrect,
		StatusCountryCodeCorrect,
	}
	if p.SubdivisionCode != nil {
		statuses = append(statuses, StatusSubdivisionCodeCorrect)
	}
	statuses = append(statuses,
		StatusPostalCodeCorrect,
		StatusLocalityCorrect,
		StatusStreetNameCorrect,
		StatusBuildingNumberCorrect,
	)
	if p.AdditionalInfo != nil {
		statuses = append(statuses, StatusAdditionalInfoCorrect)
	}
	statuses = append(statuses, StatusSelectedAutomatically)
	return statuses
}
