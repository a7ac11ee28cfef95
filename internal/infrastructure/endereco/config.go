package endereco

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Default timeouts. These are deliberately short: every call sits in a
// user-facing request path and an unbounded call would stall the request.
const (
	DefaultConnectTimeout = 2 * time.Second
	DefaultRequestTimeout = 3 * time.Second
)

// Config holds the connection settings for the Endereco validation service.
type Config struct {
	// BaseURL is the JSON-RPC endpoint of the validation service
	BaseURL string `validate:"required,url"`
	// APIKey is the tenant API key sent as X-Auth-Key
	APIKey string `validate:"required"`
	// AgentName identifies this client in the X-Agent header
	AgentName string `validate:"required"`
	// AgentVersion is appended to the agent name
	AgentVersion string
	// TransactionReferer is the originating page URL reported upstream
	TransactionReferer string
	// ConnectTimeout bounds connection establishment
	ConnectTimeout time.Duration
	// RequestTimeout bounds the whole request including the response body
	RequestTimeout time.Duration
}

// NewConfig creates a config with default timeouts.
func NewConfig(baseURL, apiKey, agentName, agentVersion string) *Config {
	return &Config{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		AgentName:      agentName,
		AgentVersion:   agentVersion,
		ConnectTimeout: DefaultConnectTimeout,
		RequestTimeout: DefaultRequestTimeout,
	}
}

var configValidator = validator.New()

// Validate validates the configuration and fills in default timeouts.
func (c *Config) Validate() error {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	return configValidator.Struct(c)
}

// IsConfigured reports whether the config carries the minimum needed to talk
// to the remote service. Operations short-circuit when it does not.
func (c *Config) IsConfigured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// AgentString builds the X-Agent header value.
func (c *Config) AgentString() string {
	if c.AgentVersion == "" {
		return c.AgentName
	}
	return c.AgentName + " v" + c.AgentVersion
}
