package handler

import (
	"github.com/ams/backend/internal/application/integrity"
	"github.com/ams/backend/internal/domain/address"
)

// CheckAddressRequest is the body of a direct address check.
type CheckAddressRequest struct {
	Country         string  `json:"country" binding:"required,len=2"`
	Language        string  `json:"language"`
	PostCode        string  `json:"postCode"`
	CityName        string  `json:"cityName"`
	StreetFull      string  `json:"streetFull" binding:"required"`
	SubdivisionCode *string `json:"subdivisionCode"`
	SessionID       string  `json:"sessionId"`
}

// CheckAddressResponse mirrors the outcome of a remote check.
type CheckAddressResponse struct {
	Successful  bool                 `json:"successful"`
	Statuses    []string             `json:"statuses"`
	Predictions []address.Prediction `json:"predictions"`
	Timestamp   int64                `json:"timestamp"`
}

// SplitStreetRequest is the body of a direct street split.
type SplitStreetRequest struct {
	FullStreet     string  `json:"fullStreet" binding:"required"`
	AdditionalInfo *string `json:"additionalInfo"`
	CountryCode    string  `json:"countryCode" binding:"required,len=2"`
	SessionID      string  `json:"sessionId"`
}

// SplitStreetResponse carries the structured street components. Degraded is
// true when the remote service was unavailable and the result is the
// unmodified passthrough.
type SplitStreetResponse struct {
	FullStreet     string  `json:"fullStreet"`
	StreetName     string  `json:"streetName"`
	BuildingNumber string  `json:"buildingNumber"`
	AdditionalInfo *string `json:"additionalInfo,omitempty"`
	Degraded       bool    `json:"degraded"`
}

// EnsureAddressRequest is the optional body of an integrity run.
type EnsureAddressRequest struct {
	ImportRunning bool `json:"importRunning"`
}

// ExtensionResponse is the serialized validation state of one address.
type ExtensionResponse struct {
	AddressID          string               `json:"addressId"`
	Statuses           []string             `json:"statuses"`
	Predictions        []address.Prediction `json:"predictions"`
	Timestamp          int64                `json:"timestamp"`
	StreetName         string               `json:"streetName"`
	HouseNumber        string               `json:"houseNumber"`
	IsPayPalAddress    bool                 `json:"isPayPalAddress"`
	IsAmazonPayAddress bool                 `json:"isAmazonPayAddress"`
	NotChecked         bool                 `json:"notChecked"`
}

// EnsureAddressResponse returns the address state after an integrity run.
type EnsureAddressResponse struct {
	AddressID              string             `json:"addressId"`
	ZipCode                string             `json:"zipCode"`
	City                   string             `json:"city"`
	Street                 string             `json:"street"`
	AdditionalAddressLine1 string             `json:"additionalAddressLine1,omitempty"`
	CountrySubdivisionID   *string            `json:"countrySubdivisionId,omitempty"`
	Extension              *ExtensionResponse `json:"extension,omitempty"`
}

// FormCorrectionRequest carries an in-flight form submission to be rewritten
// with the stored correction of the addressed record.
type FormCorrectionRequest struct {
	Street                string  `json:"street" binding:"required"`
	AdditionalAddressLine *string `json:"additionalAddressLine"`
	ExtensionStreetName   string  `json:"extensionStreetName"`
	ExtensionHouseNumber  string  `json:"extensionHouseNumber"`
}

// FormCorrectionResponse returns the possibly rewritten submission and the
// strategy that was applied to it.
type FormCorrectionResponse struct {
	Street                string  `json:"street"`
	AdditionalAddressLine *string `json:"additionalAddressLine,omitempty"`
	ExtensionStreetName   string  `json:"extensionStreetName"`
	ExtensionHouseNumber  string  `json:"extensionHouseNumber"`
	Strategy              string  `json:"strategy"`
}

func toExtensionResponse(ext *address.AddressExtension) *ExtensionResponse {
	if ext == nil {
		return nil
	}
	return &ExtensionResponse{
		AddressID:          ext.AddressID.String(),
		Statuses:           ext.Statuses(),
		Predictions:        ext.Predictions(),
		Timestamp:          ext.AMSTimestamp,
		StreetName:         ext.Street,
		HouseNumber:        ext.HouseNumber,
		IsPayPalAddress:    ext.IsPayPalAddress,
		IsAmazonPayAddress: ext.IsAmazonPayAddress,
		NotChecked:         ext.IsNotChecked(),
	}
}

func toEnsureResponse(addr *address.Address) EnsureAddressResponse {
	resp := EnsureAddressResponse{
		AddressID:              addr.ID.String(),
		ZipCode:                addr.ZipCode,
		City:                   addr.City,
		Street:                 addr.Street,
		AdditionalAddressLine1: addr.AdditionalAddressLine1,
		Extension:              toExtensionResponse(addr.Extension),
	}
	if addr.CountrySubdivisionID != nil {
		id := addr.CountrySubdivisionID.String()
		resp.CountrySubdivisionID = &id
	}
	return resp
}

func toFormCorrectionResponse(form *integrity.FormAddressData, strategy integrity.PersistenceStrategy) FormCorrectionResponse {
	return FormCorrectionResponse{
		Street:                form.Street,
		AdditionalAddressLine: form.AdditionalAddressLine,
		ExtensionStreetName:   form.Extension.StreetName,
		ExtensionHouseNumber:  form.Extension.HouseNumber,
		Strategy:              strategy.String(),
	}
}
