// Package integrity contains the decision engine that keeps address
// validation metadata consistent: it lazily creates extension records,
// splits streets, detects stale fingerprints and triggers remote checks,
// each at most once per address per request.
package integrity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/application/validation"
	"github.com/ams/backend/internal/domain/address"
)

// ProcessContext carries the per-request state of one integrity pass. The
// seen map makes repeated loads of the same address within one request
// idempotent; it is not shared across requests.
type ProcessContext struct {
	SalesChannelID uuid.UUID
	ImportRunning  bool
	StartedAt      time.Time

	seen map[uuid.UUID]*address.Address
}

// NewProcessContext creates a context for one request.
func NewProcessContext(salesChannelID uuid.UUID) *ProcessContext {
	return &ProcessContext{
		SalesChannelID: salesChannelID,
		StartedAt:      time.Now(),
		seen:           make(map[uuid.UUID]*address.Address),
	}
}

// insurance is one step of the integrity chain. Steps run in slice order;
// the order is fixed at construction and encodes the priority of each step.
type insurance struct {
	name string
	run  func(ctx context.Context, addr *address.Address, settings ChannelSettings, pctx *ProcessContext) error
}

// Service orchestrates the integrity chain for address entities.
type Service struct {
	settings   SettingsProvider
	resolver   *CountryMetadataResolver
	checker    validation.AddressChecker
	splitter   validation.StreetSplitter
	addresses  address.AddressRepository
	extensions address.ExtensionRepository
	executor   *StrategyExecutor
	sessions   AccountableSessionStore
	logger     *zap.Logger

	chain []insurance
}

// NewService creates the orchestrator with its statically ordered chain.
func NewService(
	settings SettingsProvider,
	resolver *CountryMetadataResolver,
	checker validation.AddressChecker,
	splitter validation.StreetSplitter,
	addresses address.AddressRepository,
	extensions address.ExtensionRepository,
	executor *StrategyExecutor,
	sessions AccountableSessionStore,
	logger *zap.Logger,
) *Service {
	s := &Service{
		settings:   settings,
		resolver:   resolver,
		checker:    checker,
		splitter:   splitter,
		addresses:  addresses,
		extensions: extensions,
		executor:   executor,
		sessions:   sessions,
		logger:     logger,
	}
	s.chain = []insurance{
		{name: "extension_exists", run: s.ensureExtensionExists},
		{name: "provenance_flags", run: s.ensureProvenanceFlags},
		{name: "street_split", run: s.ensureStreetSplit},
		{name: "payload_up_to_date", run: s.ensurePayloadUpToDate},
		{name: "status_set", run: s.ensureStatusSet},
	}
	return s
}

// Ensure runs the integrity chain for the given address, at most once per
// address id per request. A repeated call for an already-processed id copies
// the processed instance's fields onto the given one and returns.
func (s *Service) Ensure(ctx context.Context, addr *address.Address, pctx *ProcessContext) error {
	settings := s.settings.ForChannel(pctx.SalesChannelID)
	if !settings.Active {
		return nil
	}

	if processed, ok := pctx.seen[addr.ID]; ok {
		if processed != addr {
			addr.SyncFrom(processed)
		}
		return nil
	}

	for _, step := range s.chain {
		if err := step.run(ctx, addr, settings, pctx); err != nil {
			return fmt.Errorf("integrity step %s: %w", step.name, err)
		}
	}

	pctx.seen[addr.ID] = addr
	return nil
}

// ensureExtensionExists attaches the extension record, creating a default one
// on the first pass.
func (s *Service) ensureExtensionExists(ctx context.Context, addr *address.Address, _ ChannelSettings, _ *ProcessContext) error {
	if addr.Extension != nil {
		return nil
	}

	ext, err := s.extensions.FindByAddressID(ctx, addr.ID)
	if err == nil {
		addr.Extension = ext
		return nil
	}

	ext = address.NewAddressExtension(addr.ID)
	if err := s.extensions.Upsert(ctx, ext); err != nil {
		return err
	}
	addr.Extension = ext
	return nil
}

// ensureProvenanceFlags recomputes the PayPal / Amazon Pay flags from the
// payment metadata and persists them when they changed.
func (s *Service) ensureProvenanceFlags(ctx context.Context, addr *address.Address, _ ChannelSettings, _ *ProcessContext) error {
	ext := s.mustExtension(addr)

	isPayPal, isAmazonPay := addr.Provenance()
	if ext.IsPayPalAddress == isPayPal && ext.IsAmazonPayAddress == isAmazonPay {
		return nil
	}

	ext.IsPayPalAddress = isPayPal
	ext.IsAmazonPayAddress = isAmazonPay
	return s.extensions.Update(ctx, ext)
}

// ensureStreetSplit re-splits the street when the stored components no longer
// compose to the address's current street line.
func (s *Service) ensureStreetSplit(ctx context.Context, addr *address.Address, settings ChannelSettings, _ *ProcessContext) error {
	if !settings.SplitStreetEnabled || addr.Street == "" {
		return nil
	}
	ext := s.mustExtension(addr)

	countryCode := s.resolver.CountryCode(ctx, addr.CountryID)
	if !address.SplitRequired(countryCode, addr.Street, ext) {
		return nil
	}

	var additionalInfo *string
	if addr.AdditionalAddressLine1 != "" {
		additionalInfo = &addr.AdditionalAddressLine1
	}

	result, err := s.splitter.SplitStreet(ctx, addr.Street, additionalInfo, countryCode, "")
	if err != nil {
		s.logger.Warn("street split degraded to passthrough",
			zap.String("address_id", addr.ID.String()),
			zap.Error(err),
		)
	}

	if ext.Street == result.StreetName && ext.HouseNumber == result.BuildingNumber {
		return nil
	}
	ext.Street = result.StreetName
	ext.HouseNumber = result.BuildingNumber
	return s.extensions.Update(ctx, ext)
}

// ensurePayloadUpToDate hard-resets the validation metadata when the stored
// fingerprint no longer matches the address.
func (s *Service) ensurePayloadUpToDate(ctx context.Context, addr *address.Address, settings ChannelSettings, _ *ProcessContext) error {
	ext := s.mustExtension(addr)

	current := s.BuildFingerprint(ctx, addr, settings)
	if IsPayloadUpToDate(current, ext) {
		return nil
	}

	ext.ResetValidationMeta()
	return s.extensions.Update(ctx, ext)
}

// ensureStatusSet triggers a remote check for a not-checked address when one
// of the configured triggers applies, then writes the outcome back.
func (s *Service) ensureStatusSet(ctx context.Context, addr *address.Address, settings ChannelSettings, pctx *ProcessContext) error {
	ext := s.mustExtension(addr)

	if !ext.IsNotChecked() {
		return nil
	}
	if !s.checkApplies(addr, ext, settings, pctx) {
		return nil
	}

	payload := s.BuildFingerprint(ctx, addr, settings)
	result := s.checker.CheckAddress(ctx, payload, "")
	if !result.IsSuccessful() {
		// Validation is best-effort: the status stays not-checked and the
		// save proceeds without enrichment.
		return nil
	}

	// Cache-served results were already accounted by the request that
	// populated the cache.
	if !result.FromCache {
		s.sessions.Add(result.UsedSessionID)
	}
	return s.applyCheckResult(ctx, addr, ext, settings, result)
}

// checkApplies evaluates the per-channel triggers for a remote check. An
// address created after the request started counts as recent and is skipped
// by the existing-customer trigger.
func (s *Service) checkApplies(addr *address.Address, ext *address.AddressExtension, settings ChannelSettings, pctx *ProcessContext) bool {
	recent := addr.CreatedAt.After(pctx.StartedAt)
	remoteSourced := ext.IsPayPalAddress || ext.IsAmazonPayAddress

	if settings.ExistingCustomerCheckEnabled && !remoteSourced && !recent {
		return true
	}
	if settings.PayPalCheckEnabled && ext.IsPayPalAddress {
		return true
	}
	if settings.ImportCheckEnabled && pctx.ImportRunning {
		return true
	}
	return false
}

// applyCheckResult writes a successful check back. A minor correction with a
// complete first prediction overwrites address fields through the selected
// persistence strategy; anything else stores the raw outcome on the extension.
func (s *Service) applyCheckResult(ctx context.Context, addr *address.Address, ext *address.AddressExtension, settings ChannelSettings, result address.CheckResult) error {
	write := AddressWrite{
		Address:     addr,
		Extension:   ext,
		CountryCode: s.resolver.CountryCode(ctx, addr.CountryID),
	}

	if result.IsAutomaticCorrection() && len(result.Predictions) > 0 && result.Predictions[0].IsComplete() {
		prediction := result.Predictions[0]

		native := &NativeCorrection{
			ZipCode:        prediction.PostalCode,
			City:           prediction.Locality,
			StreetName:     prediction.StreetName,
			BuildingNumber: prediction.BuildingNumber,
			AdditionalInfo: prediction.AdditionalInfo,
		}
		if prediction.SubdivisionCode != nil && *prediction.SubdivisionCode != "" {
			native.SubdivisionID = s.resolver.SubdivisionIDByCode(ctx, addr.CountryID, *prediction.SubdivisionCode)
			native.ApplySubdivision = native.SubdivisionID != nil
		}

		write.Native = native
		write.ExtensionPatch = &ExtensionPatch{
			Statuses:    result.GenerateStatusesForAutomaticCorrection(),
			Predictions: result.Predictions,
			Timestamp:   result.Timestamp,
			Payload:     result.AddressSignature,
			StreetName:  prediction.StreetName,
			HouseNumber: prediction.BuildingNumber,
		}

		scope := address.BuildCorrectionScope(ext, settings.AllowNativeOverwrite)
		strategy := SelectStrategy(false, ext, scope)
		s.logger.Debug("applying automatic correction",
			zap.String("address_id", addr.ID.String()),
			zap.Stringer("strategy", strategy),
		)
		return s.executor.Apply(ctx, strategy, write)
	}

	write.ExtensionPatch = &ExtensionPatch{
		Statuses:    result.Statuses,
		Predictions: result.Predictions,
		Timestamp:   result.Timestamp,
		Payload:     result.AddressSignature,
	}
	return s.executor.Apply(ctx, StrategyPersistOnlyExtension, write)
}

// BuildFingerprint assembles the canonical payload for the address. The
// subdivision code is nil for countries without subdivisions, empty when
// subdivisions exist but none was chosen.
func (s *Service) BuildFingerprint(ctx context.Context, addr *address.Address, settings ChannelSettings) address.FingerprintPayload {
	countryCode := s.resolver.CountryCode(ctx, addr.CountryID)

	var subdivisionCode *string
	if s.resolver.HasSubdivisions(ctx, addr.CountryID) {
		code := ""
		if addr.CountrySubdivisionID != nil {
			if resolved := s.resolver.SubdivisionCode(ctx, *addr.CountrySubdivisionID); resolved != nil {
				code = *resolved
			}
		}
		subdivisionCode = &code
	}

	language := settings.Language
	if language == "" {
		language = DefaultChannelSettings().Language
	}

	return address.NewFingerprint(countryCode, language, addr.ZipCode, addr.City, addr.Street, subdivisionCode)
}

// mustExtension returns the extension the chain ordering guarantees to exist.
// A nil extension here means the ordering contract was violated, which is a
// programming error, not a recoverable condition.
func (s *Service) mustExtension(addr *address.Address) *address.AddressExtension {
	if addr.Extension == nil {
		panic(fmt.Sprintf("address %s has no extension attached after the existence step", addr.ID))
	}
	return addr.Extension
}
