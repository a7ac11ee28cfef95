package address

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddressExtension(t *testing.T) {
	addressID := uuid.New()
	ext := NewAddressExtension(addressID)

	assert.Equal(t, addressID, ext.AddressID)
	assert.Equal(t, StatusNotChecked, ext.AMSStatus)
	assert.True(t, ext.IsNotChecked())
	assert.Equal(t, int64(0), ext.AMSTimestamp)
	assert.Empty(t, ext.Predictions())
}

func TestAddressExtensionStatuses(t *testing.T) {
	t.Run("round-trips a status list", func(t *testing.T) {
		ext := NewAddressExtension(uuid.New())
		ext.SetStatuses([]string{StatusAddressCorrect, StatusCodeFullyCorrect})

		assert.False(t, ext.IsNotChecked())
		assert.Equal(t, []string{StatusAddressCorrect, StatusCodeFullyCorrect}, ext.Statuses())
		assert.True(t, ext.HasStatus(StatusAddressCorrect))
		assert.False(t, ext.HasStatus(StatusNotFound))
	})

	t.Run("empty list falls back to not-checked", func(t *testing.T) {
		ext := NewAddressExtension(uuid.New())
		ext.SetStatuses(nil)

		assert.True(t, ext.IsNotChecked())
		assert.Empty(t, ext.Statuses())
	})
}

func TestAddressExtensionPredictions(t *testing.T) {
	ext := NewAddressExtension(uuid.New())
	ext.SetPredictions([]Prediction{{
		CountryCode:    "DE",
		PostalCode:     "10115",
		Locality:       "Berlin",
		StreetName:     "Musterstraße",
		BuildingNumber: "42",
	}})

	predictions := ext.Predictions()
	require.Len(t, predictions, 1)
	assert.Equal(t, "Musterstraße", predictions[0].StreetName)

	t.Run("invalid json yields empty list", func(t *testing.T) {
		ext.AMSPredictions = "{broken"
		assert.Empty(t, ext.Predictions())
	})
}

func TestResetValidationMeta(t *testing.T) {
	ext := NewAddressExtension(uuid.New())
	ext.ApplyCheckResult(
		[]string{StatusAddressCorrect},
		[]Prediction{{CountryCode: "DE", PostalCode: "1", Locality: "B", StreetName: "S", BuildingNumber: "1"}},
		1234,
	)
	ext.AMSRequestPayload = `{"country":"DE"}`

	ext.ResetValidationMeta()

	assert.True(t, ext.IsNotChecked())
	assert.Equal(t, int64(0), ext.AMSTimestamp)
	assert.Empty(t, ext.Predictions())
	// The stored payload survives the reset; it is what staleness compares against.
	assert.Equal(t, `{"country":"DE"}`, ext.AMSRequestPayload)
}
