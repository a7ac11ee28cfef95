package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Endereco   EnderecoConfig
	Validation ValidationConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig selects the cross-request cache backend
type CacheConfig struct {
	Driver string // memory, redis
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// EnderecoConfig holds the connection settings for the remote validation
// service. An empty APIKey or BaseURL disables outbound calls without
// failing startup: validation is an enrichment, not a requirement.
type EnderecoConfig struct {
	BaseURL            string
	APIKey             string
	AgentName          string
	AgentVersion       string
	TransactionReferer string
	ConnectTimeout     time.Duration
	RequestTimeout     time.Duration
}

// ChannelOverride holds per-sales-channel validation flag overrides, keyed by
// channel id in the config file.
type ChannelOverride struct {
	Active                       *bool
	SplitStreetEnabled           *bool
	AllowNativeOverwrite         *bool
	ExistingCustomerCheckEnabled *bool
	PayPalCheckEnabled           *bool
	ImportCheckEnabled           *bool
	Language                     string
}

// ValidationConfig holds the default validation behavior flags plus
// per-channel overrides.
type ValidationConfig struct {
	Active                       bool
	SplitStreetEnabled           bool
	AllowNativeOverwrite         bool
	ExistingCustomerCheckEnabled bool
	PayPalCheckEnabled           bool
	ImportCheckEnabled           bool
	Language                     string
	Channels                     map[string]ChannelOverride
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with AMS_ prefix (e.g., AMS_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Boolean defaults must be declared up front: a plain GetBool cannot
	// distinguish an unset key from an explicit false.
	v.SetDefault("validation.active", true)
	v.SetDefault("validation.split_street_enabled", true)

	// Enable environment variable override
	v.SetEnvPrefix("AMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Driver: v.GetString("cache.driver"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Endereco: EnderecoConfig{
			BaseURL:            v.GetString("endereco.base_url"),
			APIKey:             v.GetString("endereco.api_key"),
			AgentName:          v.GetString("endereco.agent_name"),
			AgentVersion:       v.GetString("endereco.agent_version"),
			TransactionReferer: v.GetString("endereco.transaction_referer"),
			ConnectTimeout:     v.GetDuration("endereco.connect_timeout"),
			RequestTimeout:     v.GetDuration("endereco.request_timeout"),
		},
		Validation: ValidationConfig{
			Active:                       v.GetBool("validation.active"),
			SplitStreetEnabled:           v.GetBool("validation.split_street_enabled"),
			AllowNativeOverwrite:         v.GetBool("validation.allow_native_overwrite"),
			ExistingCustomerCheckEnabled: v.GetBool("validation.existing_customer_check_enabled"),
			PayPalCheckEnabled:           v.GetBool("validation.paypal_check_enabled"),
			ImportCheckEnabled:           v.GetBool("validation.import_check_enabled"),
			Language:                     v.GetString("validation.language"),
		},
	}

	if err := v.UnmarshalKey("validation.channels", &cfg.Validation.Channels); err != nil {
		return nil, fmt.Errorf("error parsing per-channel validation overrides: %w", err)
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ams-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "ams"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = "memory"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Endereco.AgentName == "" {
		cfg.Endereco.AgentName = cfg.App.Name
	}
	if cfg.Endereco.ConnectTimeout == 0 {
		cfg.Endereco.ConnectTimeout = 2 * time.Second
	}
	if cfg.Endereco.RequestTimeout == 0 {
		cfg.Endereco.RequestTimeout = 3 * time.Second
	}
	if cfg.Validation.Language == "" {
		cfg.Validation.Language = "de"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("cache.driver must be 'memory' or 'redis', got %q", c.Cache.Driver)
	}

	if c.Endereco.BaseURL != "" {
		u, err := url.Parse(c.Endereco.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("endereco.base_url must be a valid absolute URL, got %q", c.Endereco.BaseURL)
		}
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// merge applies an override onto a set of base flags.
func (o ChannelOverride) merge(base ValidationConfig) ValidationConfig {
	if o.Active != nil {
		base.Active = *o.Active
	}
	if o.SplitStreetEnabled != nil {
		base.SplitStreetEnabled = *o.SplitStreetEnabled
	}
	if o.AllowNativeOverwrite != nil {
		base.AllowNativeOverwrite = *o.AllowNativeOverwrite
	}
	if o.ExistingCustomerCheckEnabled != nil {
		base.ExistingCustomerCheckEnabled = *o.ExistingCustomerCheckEnabled
	}
	if o.PayPalCheckEnabled != nil {
		base.PayPalCheckEnabled = *o.PayPalCheckEnabled
	}
	if o.ImportCheckEnabled != nil {
		base.ImportCheckEnabled = *o.ImportCheckEnabled
	}
	if o.Language != "" {
		base.Language = o.Language
	}
	return base
}

// EffectiveFlags resolves the validation flags for a channel id, applying the
// channel's override on top of the defaults.
func (c *ValidationConfig) EffectiveFlags(channelID string) ValidationConfig {
	if override, ok := c.Channels[channelID]; ok {
		return override.merge(*c)
	}
	return *c
}
