package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/application/integrity"
	"github.com/ams/backend/internal/application/validation"
	"github.com/ams/backend/internal/domain/address"
	"github.com/ams/backend/internal/infrastructure/logger"
	"github.com/ams/backend/internal/interfaces/http/dto"
	"github.com/ams/backend/internal/interfaces/http/middleware"
)

// AddressHandler exposes the address validation operations: direct checks and
// street splits, integrity runs over stored addresses and form rewriting.
type AddressHandler struct {
	BaseHandler
	service   *integrity.Service
	addresses address.AddressRepository
	checker   validation.AddressChecker
	splitter  validation.StreetSplitter
	resolver  *integrity.CountryMetadataResolver
	executor  *integrity.StrategyExecutor
	sessions  integrity.AccountableSessionStore
	reporter  *integrity.AccountingReporter
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(
	service *integrity.Service,
	addresses address.AddressRepository,
	checker validation.AddressChecker,
	splitter validation.StreetSplitter,
	resolver *integrity.CountryMetadataResolver,
	executor *integrity.StrategyExecutor,
	sessions integrity.AccountableSessionStore,
	reporter *integrity.AccountingReporter,
) *AddressHandler {
	return &AddressHandler{
		service:   service,
		addresses: addresses,
		checker:   checker,
		splitter:  splitter,
		resolver:  resolver,
		executor:  executor,
		sessions:  sessions,
		reporter:  reporter,
	}
}

// RegisterRoutes registers address routes
func (h *AddressHandler) RegisterRoutes(rg *gin.RouterGroup) {
	addresses := rg.Group("/addresses")
	{
		addresses.POST("/check", h.Check)
		addresses.POST("/split", h.Split)
		addresses.POST("/:id/ensure", h.Ensure)
		addresses.POST("/:id/form-correction", h.FormCorrection)
	}
}

// Check runs a direct address check against the remote service, going through
// the cross-request cache.
func (h *AddressHandler) Check(c *gin.Context) {
	var req CheckAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	language := req.Language
	if language == "" {
		language = integrity.DefaultChannelSettings().Language
	}
	payload := address.NewFingerprint(
		strings.ToUpper(req.Country),
		language,
		req.PostCode,
		req.CityName,
		req.StreetFull,
		req.SubdivisionCode,
	)

	result := h.checker.CheckAddress(c.Request.Context(), payload, req.SessionID)
	if result.IsSuccessful() && !result.FromCache {
		h.sessions.Add(result.UsedSessionID)
	}

	h.Success(c, CheckAddressResponse{
		Successful:  result.Successful,
		Statuses:    result.Statuses,
		Predictions: result.Predictions,
		Timestamp:   result.Timestamp,
	})
}

// Split splits a free-text street line into structured components. The call
// degrades to a passthrough result when the remote service is unavailable.
func (h *AddressHandler) Split(c *gin.Context) {
	var req SplitStreetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	countryCode := strings.ToUpper(req.CountryCode)
	result, err := h.splitter.SplitStreet(c.Request.Context(), req.FullStreet, req.AdditionalInfo, countryCode, req.SessionID)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("street split degraded to passthrough", zap.Error(err))
	}

	h.Success(c, SplitStreetResponse{
		FullStreet:     result.FullStreet,
		StreetName:     result.StreetName,
		BuildingNumber: result.BuildingNumber,
		AdditionalInfo: result.AdditionalInfo,
		Degraded:       err != nil,
	})
}

// Ensure runs the integrity chain for a stored address and returns its state
// afterwards. Accountable sessions accumulated by the run are flushed once
// the chain has finished.
func (h *AddressHandler) Ensure(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	addressID, err := uuid.Parse(uri.ID)
	if err != nil {
		h.BadRequest(c, "invalid address id")
		return
	}

	var req EnsureAddressRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	addr, err := h.addresses.FindByID(ctx, addressID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	pctx := integrity.NewProcessContext(h.salesChannelID(c))
	pctx.ImportRunning = req.ImportRunning

	if err := h.service.Ensure(ctx, addr, pctx); err != nil {
		logger.FromContext(ctx).Error("integrity run failed",
			zap.String("address_id", addressID.String()),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}

	h.reporter.Flush(ctx)
	h.Success(c, toEnsureResponse(addr))
}

// FormCorrection rewrites an in-flight form submission with the stored
// correction of the addressed record. Without a complete stored prediction
// the submission comes back unchanged.
func (h *AddressHandler) FormCorrection(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	addressID, err := uuid.Parse(uri.ID)
	if err != nil {
		h.BadRequest(c, "invalid address id")
		return
	}

	var req FormCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	addr, err := h.addresses.FindByID(ctx, addressID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	form := &integrity.FormAddressData{
		Street:                req.Street,
		AdditionalAddressLine: req.AdditionalAddressLine,
		Extension: integrity.FormExtensionData{
			StreetName:  req.ExtensionStreetName,
			HouseNumber: req.ExtensionHouseNumber,
		},
	}

	write := integrity.AddressWrite{
		PostData:    form,
		Address:     addr,
		Extension:   addr.Extension,
		CountryCode: h.resolver.CountryCode(ctx, addr.CountryID),
	}
	if addr.Extension != nil {
		if predictions := addr.Extension.Predictions(); len(predictions) > 0 && predictions[0].IsComplete() {
			p := predictions[0]
			write.Native = &integrity.NativeCorrection{
				ZipCode:        p.PostalCode,
				City:           p.Locality,
				StreetName:     p.StreetName,
				BuildingNumber: p.BuildingNumber,
				AdditionalInfo: p.AdditionalInfo,
			}
		}
	}

	strategy := h.executor.GetStrategy(write, false)
	if err := h.executor.Apply(ctx, strategy, write); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toFormCorrectionResponse(form, strategy))
}

// salesChannelID parses the sales channel header, falling back to the nil
// uuid so the default settings apply.
func (h *AddressHandler) salesChannelID(c *gin.Context) uuid.UUID {
	raw := middleware.GetSalesChannelID(c)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("malformed sales channel header", zap.String("value", raw))
		return uuid.Nil
	}
	return id
}
