package endereco

import "github.com/ams/backend/internal/domain/address"

// JSON-RPC method names of the Endereco service.
const (
	methodAddressCheck = "addressCheck"
	methodSplitStreet  = "splitStreet"
	methodDoAccounting = "doAccounting"
	methodDoConversion = "doConversion"
)

// rpcRequest is the fixed JSON-RPC 2.0 envelope for all outbound calls.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

func newRPCRequest(method string, params any) rpcRequest {
	return rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}
}

// splitStreetParams is the request payload for the splitStreet method.
type splitStreetParams struct {
	FormatCountry  string  `json:"formatCountry"`
	Language       string  `json:"language"`
	Street         string  `json:"street"`
	AdditionalInfo *string `json:"additionalInfo,omitempty"`
}

// accountingParams is the request payload for the doAccounting method.
type accountingParams struct {
	SessionID string `json:"sessionId"`
}

// checkResponse is the response envelope of addressCheck. The presence of the
// result key discriminates success from failure.
type checkResponse struct {
	Result *checkResponseResult `json:"result"`
}

type checkResponseResult struct {
	Status      []string        `json:"status"`
	Predictions []rawPrediction `json:"predictions"`
}

// rawPrediction mirrors the remote service's field names before they are
// renamed into the local vocabulary.
type rawPrediction struct {
	Country         string  `json:"country"`
	PostCode        string  `json:"postCode"`
	CityName        string  `json:"cityName"`
	Street          string  `json:"street"`
	HouseNumber     string  `json:"houseNumber"`
	AdditionalInfo  *string `json:"additionalInfo,omitempty"`
	SubdivisionCode *string `json:"subdivisionCode,omitempty"`
}

func (p rawPrediction) toDomain() address.Prediction {
	return address.Prediction{
		CountryCode:     p.Country,
		PostalCode:      p.PostCode,
		Locality:        p.CityName,
		StreetName:      p.Street,
		BuildingNumber:  p.HouseNumber,
		AdditionalInfo:  p.AdditionalInfo,
		SubdivisionCode: p.SubdivisionCode,
	}
}

// splitResponse is the response envelope of splitStreet.
type splitResponse struct {
	Result *splitResponseResult `json:"result"`
}

type splitResponseResult struct {
	Street         string  `json:"street"`
	StreetName     string  `json:"streetName"`
	HouseNumber    string  `json:"houseNumber"`
	AdditionalInfo *string `json:"additionalInfo,omitempty"`
}
