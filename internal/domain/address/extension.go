package address

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatusNotChecked is the default validation status of a fresh extension.
const StatusNotChecked = "not-checked"

// statusSeparator joins the status codes of the last check into one column.
const statusSeparator = ","

// AddressExtension is the per-address auxiliary record carrying validation
// metadata. It shares its primary key with the owning address and is created
// lazily on the first integrity pass.
type AddressExtension struct {
	AddressID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AMSStatus          string    `gorm:"type:text;not null;default:'not-checked'"`
	AMSTimestamp       int64     `gorm:"not null;default:0"`
	AMSPredictions     string    `gorm:"type:jsonb;not null;default:'[]'"`
	AMSRequestPayload  string    `gorm:"type:text;not null;default:''"`
	Street             string    `gorm:"type:varchar(255);not null;default:''"` // split street name
	HouseNumber        string    `gorm:"type:varchar(50);not null;default:''"`
	IsPayPalAddress    bool      `gorm:"not null;default:false"`
	IsAmazonPayAddress bool      `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName returns the table name for GORM
func (AddressExtension) TableName() string {
	return "address_extensions"
}

// NewAddressExtension creates a default extension for the given address.
func NewAddressExtension(addressID uuid.UUID) *AddressExtension {
	return &AddressExtension{
		AddressID:      addressID,
		AMSStatus:      StatusNotChecked,
		AMSTimestamp:   0,
		AMSPredictions: "[]",
	}
}

// IsNotChecked reports whether the address has never been validated against
// the current fingerprint.
func (e *AddressExtension) IsNotChecked() bool {
	return e.AMSStatus == StatusNotChecked || e.AMSStatus == ""
}

// Statuses returns the status codes of the last validation.
func (e *AddressExtension) Statuses() []string {
	if e.IsNotChecked() {
		return []string{}
	}
	return strings.Split(e.AMSStatus, statusSeparator)
}

// SetStatuses stores the given status codes.
func (e *AddressExtension) SetStatuses(statuses []string) {
	if len(statuses) == 0 {
		e.AMSStatus = StatusNotChecked
		return
	}
	e.AMSStatus = strings.Join(statuses, statusSeparator)
}

// HasStatus reports whether the stored status list contains the given code.
func (e *AddressExtension) HasStatus(code string) bool {
	for _, s := range e.Statuses() {
		if s == code {
			return true
		}
	}
	return false
}

// Predictions decodes the stored correction candidates.
func (e *AddressExtension) Predictions() []Prediction {
	if e.AMSPredictions == "" {
		return []Prediction{}
	}
	var predictions []Prediction
	if err := json.Unmarshal([]byte(e.AMSPredictions), &predictions); err != nil {
		return []Prediction{}
	}
	return predictions
}

// SetPredictions stores the given correction candidates.
func (e *AddressExtension) SetPredictions(predictions []Prediction) {
	if predictions == nil {
		predictions = []Prediction{}
	}
	data, err := json.Marshal(predictions)
	if err != nil {
		e.AMSPredictions = "[]"
		return
	}
	e.AMSPredictions = string(data)
}

// ResetValidationMeta hard-resets all validation metadata to defaults.
// Partial correction data tied to an old fingerprint must not survive, so
// this is a full reset rather than an incremental patch.
func (e *AddressExtension) ResetValidationMeta() {
	e.AMSStatus = StatusNotChecked
	e.AMSTimestamp = 0
	e.AMSPredictions = "[]"
}

// ApplyCheckResult stores the outcome of a validation run.
func (e *AddressExtension) ApplyCheckResult(statuses []string, predictions []Prediction, timestamp int64) {
	e.SetStatuses(statuses)
	e.SetPredictions(predictions)
	e.AMSTimestamp = timestamp
}
