package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults without a config file", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ams-backend", cfg.App.Name)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "memory", cfg.Cache.Driver)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 2*time.Second, cfg.Endereco.ConnectTimeout)
		assert.Equal(t, 3*time.Second, cfg.Endereco.RequestTimeout)
		assert.Equal(t, "de", cfg.Validation.Language)
		assert.True(t, cfg.Validation.Active)
		assert.True(t, cfg.Validation.SplitStreetEnabled)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("AMS_APP_PORT", "9090")
		t.Setenv("AMS_ENDERECO_API_KEY", "test-key")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "test-key", cfg.Endereco.APIKey)
	})

	t.Run("rejects an unknown cache driver", func(t *testing.T) {
		t.Setenv("AMS_CACHE_DRIVER", "memcached")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rejects a malformed endereco url", func(t *testing.T) {
		t.Setenv("AMS_ENDERECO_BASE_URL", "not-a-url")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.example.com",
		Port:     5432,
		User:     "ams",
		Password: "p@ss/word",
		DBName:   "ams",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.example.com:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestValidationConfigEffectiveFlags(t *testing.T) {
	off := false
	cfg := ValidationConfig{
		Active:             true,
		SplitStreetEnabled: true,
		Language:           "de",
		Channels: map[string]ChannelOverride{
			"channel-a": {SplitStreetEnabled: &off, Language: "en"},
		},
	}

	t.Run("unknown channel gets the defaults", func(t *testing.T) {
		flags := cfg.EffectiveFlags("channel-x")
		assert.True(t, flags.Active)
		assert.True(t, flags.SplitStreetEnabled)
		assert.Equal(t, "de", flags.Language)
	})

	t.Run("override applies on top of defaults", func(t *testing.T) {
		flags := cfg.EffectiveFlags("channel-a")
		assert.True(t, flags.Active)
		assert.False(t, flags.SplitStreetEnabled)
		assert.Equal(t, "en", flags.Language)
	})
}
