package integrity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/domain/address"
)

// PersistenceStrategy is the closed set of behaviors for writing a validation
// correction back. Exactly one is selected per write.
type PersistenceStrategy int

const (
	// StrategyDoNothing performs no write at all.
	StrategyDoNothing PersistenceStrategy = iota

	// StrategyPersistOnlyExtension writes split components and validation
	// metadata to the extension record, leaving native fields untouched.
	StrategyPersistOnlyExtension

	// StrategyPersistNativeAndExtension additionally overwrites native
	// address fields with the correction.
	StrategyPersistNativeAndExtension

	// StrategyOverwritePostData mutates an in-flight form submission before
	// it is saved; no repository write happens here.
	StrategyOverwritePostData
)

// String returns a readable name for logging.
func (s PersistenceStrategy) String() string {
	switch s {
	case StrategyDoNothing:
		return "do_nothing"
	case StrategyPersistOnlyExtension:
		return "persist_only_extension"
	case StrategyPersistNativeAndExtension:
		return "persist_native_and_extension"
	case StrategyOverwritePostData:
		return "overwrite_post_data"
	default:
		return "unknown"
	}
}

// SelectStrategy chooses the persistence behavior for one write. The decision
// table is exhaustive and mutually exclusive:
//
//	in-flight form data present      -> OverwritePostData
//	no extension record attached     -> DoNothing
//	native and extension writable    -> PersistNativeAndExtension
//	only extension writable          -> PersistOnlyExtension
func SelectStrategy(hasPostData bool, ext *address.AddressExtension, scope address.CorrectionScope) PersistenceStrategy {
	if hasPostData {
		return StrategyOverwritePostData
	}
	if ext == nil {
		return StrategyDoNothing
	}
	if scope.CanWriteNative() && scope.CanWriteExtension() {
		return StrategyPersistNativeAndExtension
	}
	if scope.CanWriteExtension() {
		return StrategyPersistOnlyExtension
	}
	return StrategyDoNothing
}

// FormExtensionData is the nested extension block of an in-flight submission.
type FormExtensionData struct {
	StreetName  string `json:"streetName"`
	HouseNumber string `json:"houseNumber"`
}

// FormAddressData is an in-flight address submission that has not been
// persisted yet. OverwritePostData mutates it in place.
type FormAddressData struct {
	Street                string            `json:"street"`
	AdditionalAddressLine *string           `json:"additionalAddressLine,omitempty"`
	Extension             FormExtensionData `json:"extension"`
}

// NativeCorrection carries the native field values a correction wants to
// write. Nil pointers mean "leave the field alone".
type NativeCorrection struct {
	ZipCode          string
	City             string
	StreetName       string
	BuildingNumber   string
	AdditionalInfo   *string
	SubdivisionID    *uuid.UUID
	ApplySubdivision bool
}

// ExtensionPatch carries the extension field values a write wants to persist.
type ExtensionPatch struct {
	Statuses    []string
	Predictions []address.Prediction
	Timestamp   int64
	Payload     string
	StreetName  string
	HouseNumber string
}

// AddressWrite bundles everything one persistence pass operates on.
type AddressWrite struct {
	PostData       *FormAddressData
	Address        *address.Address
	Extension      *address.AddressExtension
	CountryCode    string
	Native         *NativeCorrection
	ExtensionPatch *ExtensionPatch
}

// StrategyExecutor applies a selected persistence strategy. Every repository
// write is preceded by a per-field comparison so unchanged records produce no
// update call and no change events downstream.
type StrategyExecutor struct {
	addresses  address.AddressRepository
	extensions address.ExtensionRepository
	logger     *zap.Logger
}

// NewStrategyExecutor creates a new executor.
func NewStrategyExecutor(addresses address.AddressRepository, extensions address.ExtensionRepository, logger *zap.Logger) *StrategyExecutor {
	return &StrategyExecutor{
		addresses:  addresses,
		extensions: extensions,
		logger:     logger,
	}
}

// GetStrategy selects the strategy for the given write.
func (e *StrategyExecutor) GetStrategy(w AddressWrite, allowNativeOverwrite bool) PersistenceStrategy {
	if w.Extension == nil {
		return SelectStrategy(w.PostData != nil, nil, address.CorrectionScope{})
	}
	scope := address.BuildCorrectionScope(w.Extension, allowNativeOverwrite)
	return SelectStrategy(w.PostData != nil, w.Extension, scope)
}

// Apply executes the given strategy against the write.
func (e *StrategyExecutor) Apply(ctx context.Context, strategy PersistenceStrategy, w AddressWrite) error {
	switch strategy {
	case StrategyDoNothing:
		return nil
	case StrategyOverwritePostData:
		e.overwritePostData(w)
		return nil
	case StrategyPersistOnlyExtension:
		return e.persistExtension(ctx, w)
	case StrategyPersistNativeAndExtension:
		if err := e.persistNative(ctx, w); err != nil {
			return err
		}
		return e.persistExtension(ctx, w)
	default:
		return nil
	}
}

// overwritePostData rewrites the in-memory submission with the corrected
// street line and the split components.
func (e *StrategyExecutor) overwritePostData(w AddressWrite) {
	if w.PostData == nil || w.Native == nil {
		return
	}
	full := address.FullStreet(w.CountryCode, w.Native.StreetName, w.Native.BuildingNumber)
	w.PostData.Street = full
	if w.PostData.AdditionalAddressLine != nil && w.Native.AdditionalInfo != nil {
		w.PostData.AdditionalAddressLine = w.Native.AdditionalInfo
	}
	w.PostData.Extension.StreetName = w.Native.StreetName
	w.PostData.Extension.HouseNumber = w.Native.BuildingNumber
}

// persistNative overwrites the native address fields, skipping the repository
// call entirely when nothing changed.
func (e *StrategyExecutor) persistNative(ctx context.Context, w AddressWrite) error {
	if w.Native == nil || w.Address == nil {
		return nil
	}

	changed := false
	full := address.FullStreet(w.CountryCode, w.Native.StreetName, w.Native.BuildingNumber)

	if w.Native.ZipCode != "" && w.Address.ZipCode != w.Native.ZipCode {
		w.Address.ZipCode = w.Native.ZipCode
		changed = true
	}
	if w.Native.City != "" && w.Address.City != w.Native.City {
		w.Address.City = w.Native.City
		changed = true
	}
	if full != "" && w.Address.Street != full {
		w.Address.Street = full
		changed = true
	}
	if w.Native.AdditionalInfo != nil && w.Address.AdditionalAddressLine1 != *w.Native.AdditionalInfo {
		w.Address.AdditionalAddressLine1 = *w.Native.AdditionalInfo
		changed = true
	}
	if w.Native.ApplySubdivision && !uuidPtrEqual(w.Address.CountrySubdivisionID, w.Native.SubdivisionID) {
		w.Address.CountrySubdivisionID = w.Native.SubdivisionID
		changed = true
	}

	if !changed {
		return nil
	}
	e.logger.Debug("persisting corrected native address fields",
		zap.String("address_id", w.Address.ID.String()),
	)
	return e.addresses.Update(ctx, w.Address)
}

// persistExtension writes the patch onto the extension record, skipping the
// repository call when nothing changed.
func (e *StrategyExecutor) persistExtension(ctx context.Context, w AddressWrite) error {
	if w.ExtensionPatch == nil || w.Extension == nil {
		return nil
	}

	p := w.ExtensionPatch
	changed := false

	if p.Statuses != nil {
		before := w.Extension.AMSStatus
		w.Extension.SetStatuses(p.Statuses)
		changed = changed || before != w.Extension.AMSStatus
	}
	if p.Predictions != nil {
		before := w.Extension.AMSPredictions
		w.Extension.SetPredictions(p.Predictions)
		changed = changed || before != w.Extension.AMSPredictions
	}
	if p.Timestamp != 0 && w.Extension.AMSTimestamp != p.Timestamp {
		w.Extension.AMSTimestamp = p.Timestamp
		changed = true
	}
	if p.Payload != "" && w.Extension.AMSRequestPayload != p.Payload {
		w.Extension.AMSRequestPayload = p.Payload
		changed = true
	}
	if p.StreetName != "" && w.Extension.Street != p.StreetName {
		w.Extension.Street = p.StreetName
		changed = true
	}
	if p.HouseNumber != "" && w.Extension.HouseNumber != p.HouseNumber {
		w.Extension.HouseNumber = p.HouseNumber
		changed = true
	}

	if !changed {
		return nil
	}
	e.logger.Debug("persisting extension patch",
		zap.String("address_id", w.Extension.AddressID.String()),
	)
	return e.extensions.Update(ctx, w.Extension)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
