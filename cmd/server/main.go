package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ams/backend/internal/application/integrity"
	"github.com/ams/backend/internal/application/validation"
	"github.com/ams/backend/internal/infrastructure/cache"
	"github.com/ams/backend/internal/infrastructure/config"
	"github.com/ams/backend/internal/infrastructure/endereco"
	"github.com/ams/backend/internal/infrastructure/logger"
	"github.com/ams/backend/internal/infrastructure/persistence"
	"github.com/ams/backend/internal/interfaces/http/handler"
	"github.com/ams/backend/internal/interfaces/http/middleware"
	"github.com/ams/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Address Management Service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection with zap-backed query logging
	db, err := persistence.NewDatabaseWithZap(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Cross-request validation result cache
	taggedCache, err := newTaggedCache(cfg)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		if err := taggedCache.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()
	log.Info("Cache initialized", zap.String("driver", cfg.Cache.Driver))

	// Remote validation client. Missing credentials disable outbound calls
	// instead of failing startup.
	enderecoClient, err := newEnderecoClient(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize validation client", zap.Error(err))
	}

	// Caching decorators around the remote client
	checker := validation.NewCachedAddressChecker(enderecoClient, taggedCache, log)
	splitter := validation.NewCachedStreetSplitter(enderecoClient, taggedCache, log)

	// Repositories
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	extensionRepo := persistence.NewGormExtensionRepository(db.DB)
	countryRepo := persistence.NewGormCountryRepository(db.DB)

	// Integrity engine
	resolver := integrity.NewCountryMetadataResolver(countryRepo, log)
	executor := integrity.NewStrategyExecutor(addressRepo, extensionRepo, log)
	settings := buildSettings(&cfg.Validation, log)
	sessions := integrity.NewInMemorySessionStore()
	service := integrity.NewService(settings, resolver, checker, splitter, addressRepo, extensionRepo, executor, sessions, log)
	reporter := integrity.NewAccountingReporter(enderecoClient, sessions, log)

	// HTTP handlers
	addressHandler := handler.NewAddressHandler(service, addressRepo, checker, splitter, resolver, executor, sessions, reporter)
	accountingHandler := handler.NewAccountingHandler(reporter)
	cacheHandler := handler.NewCacheHandler(taggedCache, log)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Correlation middleware must run before the request logger so the
	// request-scoped fields are on the context when the logger is built.
	engine.Use(middleware.RequestID())
	engine.Use(middleware.SalesChannel())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(addressHandler).
		Register(accountingHandler).
		Register(cacheHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Report any sessions still pending before the process exits
	reporter.Flush(ctx)

	log.Info("Server exited gracefully")
}

// newTaggedCache selects the cache backend from the configured driver.
func newTaggedCache(cfg *config.Config) (cache.TaggedCache, error) {
	if cfg.Cache.Driver == "redis" {
		return cache.NewRedisTaggedCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return cache.NewInMemoryTaggedCache(), nil
}

// newEnderecoClient creates the remote client, degrading to a disabled client
// when no credentials are configured.
func newEnderecoClient(cfg *config.Config, log *zap.Logger) (*endereco.Client, error) {
	if cfg.Endereco.BaseURL == "" || cfg.Endereco.APIKey == "" {
		log.Warn("validation service not configured, outbound calls disabled")
		return endereco.NewDisabledClient(log), nil
	}
	return endereco.NewClient(&endereco.Config{
		BaseURL:            cfg.Endereco.BaseURL,
		APIKey:             cfg.Endereco.APIKey,
		AgentName:          cfg.Endereco.AgentName,
		AgentVersion:       cfg.Endereco.AgentVersion,
		TransactionReferer: cfg.Endereco.TransactionReferer,
		ConnectTimeout:     cfg.Endereco.ConnectTimeout,
		RequestTimeout:     cfg.Endereco.RequestTimeout,
	}, log)
}

// buildSettings converts the configured validation flags into the per-channel
// settings provider. Channel keys that are not valid uuids are skipped.
func buildSettings(vc *config.ValidationConfig, log *zap.Logger) *integrity.StaticSettings {
	settings := integrity.NewStaticSettings(toChannelSettings(*vc))

	for key := range vc.Channels {
		channelID, err := uuid.Parse(key)
		if err != nil {
			log.Warn("skipping validation override with malformed channel id",
				zap.String("channel", key),
			)
			continue
		}
		settings.Channels[channelID] = toChannelSettings(vc.EffectiveFlags(key))
	}

	return settings
}

func toChannelSettings(flags config.ValidationConfig) integrity.ChannelSettings {
	return integrity.ChannelSettings{
		Active:                       flags.Active,
		SplitStreetEnabled:           flags.SplitStreetEnabled,
		AllowNativeOverwrite:         flags.AllowNativeOverwrite,
		ExistingCustomerCheckEnabled: flags.ExistingCustomerCheckEnabled,
		PayPalCheckEnabled:           flags.PayPalCheckEnabled,
		ImportCheckEnabled:           flags.ImportCheckEnabled,
		Language:                     flags.Language,
	}
}
