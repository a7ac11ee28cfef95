package endereco

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/domain/address"
)

// maxResponseSize is the maximum allowed response size from the Endereco API (1MB)
const maxResponseSize = 1 * 1024 * 1024

// SessionNotRequired is the transaction id reported when no accountable
// session exists, including when session id generation fails.
const SessionNotRequired = "not_required"

// Errors returned by the transport layer. They never cross the client
// boundary for addressCheck/splitStreet: those operations degrade to a
// failed result or an unmodified passthrough instead.
var (
	ErrRemoteUnavailable = errors.New("endereco: service unavailable")
	ErrRemoteRejected    = errors.New("endereco: request rejected")
	ErrInvalidResponse   = errors.New("endereco: invalid response")
	ErrNotConfigured     = errors.New("endereco: missing API key or URL")
)

// Client talks to the Endereco validation service via JSON-RPC 2.0.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Endereco client with the given configuration.
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: config.ConnectTimeout,
				}).DialContext,
			},
		},
		logger: logger,
	}, nil
}

// NewDisabledClient creates a client without remote credentials. Every
// operation short-circuits: checks come back failed, splits pass through and
// accounting reports ErrNotConfigured. It lets the service run without the
// validation integration instead of failing startup.
func NewDisabledClient(logger *zap.Logger) *Client {
	return &Client{
		config:     &Config{},
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

// GenerateSessionID returns a new random session identifier. A failing
// entropy source degrades to the not_required marker instead of failing the
// surrounding operation.
func GenerateSessionID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return SessionNotRequired
	}
	return id.String()
}

// CheckAddress validates the given fingerprint payload against the remote
// service. It never returns an error: transport and parse failures yield a
// failed result carrying the used session id and the address signature, so
// staleness checks keep working after a failed call.
func (c *Client) CheckAddress(ctx context.Context, payload address.FingerprintPayload, sessionID string) address.CheckResult {
	if sessionID == "" {
		sessionID = GenerateSessionID()
	}
	signature := payload.CanonicalString()

	if !c.config.IsConfigured() {
		return address.NewFailedCheckResult(sessionID, signature)
	}

	body, err := c.doRequest(ctx, methodAddressCheck, payload, sessionID)
	if err != nil {
		c.logger.Error("address check failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return address.NewFailedCheckResult(sessionID, signature)
	}

	var resp checkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("address check returned unparsable body",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return address.NewFailedCheckResult(sessionID, signature)
	}
	if resp.Result == nil {
		return address.NewFailedCheckResult(sessionID, signature)
	}

	predictions := make([]address.Prediction, 0, len(resp.Result.Predictions))
	for _, raw := range resp.Result.Predictions {
		predictions = append(predictions, raw.toDomain())
	}

	return address.NewSuccessfulCheckResult(resp.Result.Status, predictions, sessionID, signature)
}

// SplitStreet splits a free-text street into name and building number. On any
// failure the street passes through unmodified: the returned error is
// informational only and the result is always usable.
func (c *Client) SplitStreet(ctx context.Context, fullStreet string, additionalInfo *string, countryCode, sessionID string) (address.SplitStreetResult, error) {
	fallback := address.NewUnsplitStreetResult(fullStreet, additionalInfo)

	if !c.config.IsConfigured() {
		return fallback, ErrNotConfigured
	}

	params := splitStreetParams{
		FormatCountry:  countryCode,
		Language:       "de",
		Street:         fullStreet,
		AdditionalInfo: additionalInfo,
	}

	body, err := c.doRequest(ctx, methodSplitStreet, params, sessionID)
	if err != nil {
		c.logger.Error("street split failed",
			zap.String("street", fullStreet),
			zap.Error(err),
		)
		return fallback, err
	}

	var resp splitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("street split returned unparsable body", zap.Error(err))
		return fallback, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Result == nil {
		return fallback, ErrInvalidResponse
	}

	return address.SplitStreetResult{
		FullStreet:     fullStreet,
		StreetName:     resp.Result.StreetName,
		BuildingNumber: resp.Result.HouseNumber,
		AdditionalInfo: resp.Result.AdditionalInfo,
	}, nil
}

// DoAccounting reports one accountable session to the remote service.
func (c *Client) DoAccounting(ctx context.Context, sessionID string) error {
	if !c.config.IsConfigured() {
		return ErrNotConfigured
	}
	_, err := c.doRequest(ctx, methodDoAccounting, accountingParams{SessionID: sessionID}, sessionID)
	return err
}

// DoConversion closes an accounting batch.
func (c *Client) DoConversion(ctx context.Context) error {
	if !c.config.IsConfigured() {
		return ErrNotConfigured
	}
	_, err := c.doRequest(ctx, methodDoConversion, struct{}{}, SessionNotRequired)
	return err
}

// doRequest performs one JSON-RPC call and returns the raw response body.
func (c *Client) doRequest(ctx context.Context, method string, params any, sessionID string) ([]byte, error) {
	payload, err := json.Marshal(newRPCRequest(method, params))
	if err != nil {
		return nil, fmt.Errorf("endereco: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("endereco: failed to create request: %w", err)
	}

	if sessionID == "" {
		sessionID = SessionNotRequired
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Key", c.config.APIKey)
	req.Header.Set("X-Transaction-Id", sessionID)
	req.Header.Set("X-Transaction-Referer", c.config.TransactionReferer)
	req.Header.Set("X-Agent", c.config.AgentString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("endereco: failed to read response: %w", err)
	}

	c.logger.Debug("endereco call completed",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d", ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", ErrRemoteRejected, resp.StatusCode)
	}

	return body, nil
}
