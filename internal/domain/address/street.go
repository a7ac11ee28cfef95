package address

import "strings"

// numberFirstCountries lists countries whose postal convention puts the
// building number before the street name.
var numberFirstCountries = map[string]struct{}{
	"AU": {},
	"CA": {},
	"FR": {},
	"GB": {},
	"IE": {},
	"NZ": {},
	"US": {},
}

// FullStreet composes a full street line from a street name and building
// number using the country's conventional order.
func FullStreet(countryCode, streetName, buildingNumber string) string {
	streetName = strings.TrimSpace(streetName)
	buildingNumber = strings.TrimSpace(buildingNumber)
	if streetName == "" {
		return buildingNumber
	}
	if buildingNumber == "" {
		return streetName
	}
	if _, ok := numberFirstCountries[strings.ToUpper(countryCode)]; ok {
		return buildingNumber + " " + streetName
	}
	return streetName + " " + buildingNumber
}

// SplitRequired reports whether the stored split components no longer match
// the address's current full street line.
func SplitRequired(countryCode, fullStreet string, ext *AddressExtension) bool {
	composed := FullStreet(countryCode, ext.Street, ext.HouseNumber)
	return strings.TrimSpace(fullStreet) != composed
}
