package address

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintCanonicalString(t *testing.T) {
	t.Run("omits subdivisionCode key when country has no subdivisions", func(t *testing.T) {
		fp := NewFingerprint("DE", "de", "10115", "Berlin", "Musterstr. 1", nil)

		canonical := fp.CanonicalString()

		assert.NotContains(t, canonical, "subdivisionCode")

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(canonical), &decoded))
		assert.Equal(t, "DE", decoded["country"])
		assert.Equal(t, "10115", decoded["postCode"])
		assert.Equal(t, "Berlin", decoded["cityName"])
		assert.Equal(t, "Musterstr. 1", decoded["streetFull"])
	})

	t.Run("keeps empty subdivisionCode when subdivisions exist but none chosen", func(t *testing.T) {
		empty := ""
		fp := NewFingerprint("DE", "de", "10115", "Berlin", "Musterstr. 1", &empty)

		canonical := fp.CanonicalString()

		assert.Contains(t, canonical, `"subdivisionCode":""`)
	})

	t.Run("distinguishes absent from empty subdivision", func(t *testing.T) {
		empty := ""
		absent := NewFingerprint("DE", "de", "10115", "Berlin", "Musterstr. 1", nil)
		unset := NewFingerprint("DE", "de", "10115", "Berlin", "Musterstr. 1", &empty)

		assert.NotEqual(t, absent.CanonicalString(), unset.CanonicalString())
		assert.NotEqual(t, absent.Checksum(), unset.Checksum())
	})

	t.Run("is deterministic regardless of construction path", func(t *testing.T) {
		code := "BY"
		a := NewFingerprint("DE", "de", "80331", "München", "Marienplatz 1", &code)
		b := FingerprintPayload{
			SubdivisionCode: &code,
			StreetFull:      "Marienplatz 1",
			CityName:        "München",
			PostCode:        "80331",
			Language:        "de",
			Country:         "DE",
		}

		assert.Equal(t, a.CanonicalString(), b.CanonicalString())
		assert.Equal(t, a.Checksum(), b.Checksum())
	})

	t.Run("fixed key order", func(t *testing.T) {
		code := "BY"
		fp := NewFingerprint("DE", "de", "80331", "München", "Marienplatz 1", &code)

		assert.Equal(t,
			`{"country":"DE","language":"de","postCode":"80331","cityName":"München","streetFull":"Marienplatz 1","subdivisionCode":"BY"}`,
			fp.CanonicalString())
	})
}

func TestPayloadChecksum(t *testing.T) {
	fp := NewFingerprint("DE", "de", "10115", "Berlin", "Musterstr. 1", nil)

	assert.Equal(t, fp.Checksum(), PayloadChecksum(fp.CanonicalString()))
	assert.NotEqual(t, fp.Checksum(), PayloadChecksum(fp.CanonicalString()+" "))
}
