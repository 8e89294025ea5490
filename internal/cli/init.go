// Package cli provides the start-up wiring shared by cmd/financas,
// cmd/financas-worker and cmd/financasctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"financas/internal/analytics"
	"financas/internal/auth"
	"financas/internal/backend"
	"financas/internal/cache"
	"financas/internal/config"
	"financas/internal/log"
	"financas/internal/sheets"
	gsheet "financas/internal/sheets/google"
	"financas/internal/storage"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger installs the process-wide logger described by cfg.
func SetupLogger(cfg *config.Config) *log.Logger {
	return log.Setup(cfg.LogLevel, cfg.LogFormat)
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.ForComponent(log.ComponentApp).Error("Configuration validation failed",
			log.NewFields().WithError(err, log.ErrorTypeConfiguration).ToSlice()...)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the configured backend. The returned cleanup closes it.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(nil).Open(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := res.Close(); err != nil {
			log.ForComponent(log.ComponentBackend).Error("Failed to close store",
				log.NewFields().WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		}
	}
	return res.Store, cleanup, nil
}

// OpenViewCache returns the Redis view cache when REDIS_URL is set and the
// in-process LRU otherwise. The cleanup stops background work and closes
// connections.
func OpenViewCache(ctx context.Context, cfg *config.Config) (cache.ViewCache, func(), error) {
	logger := log.ForComponent(log.ComponentCache)
	if cfg.RedisURL != "" {
		views, err := cache.NewRedisViews(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("Using Redis view cache", "ttl", cfg.CacheTTL.String())
		return views, func() { _ = views.Close() }, nil
	}

	lru := cache.NewLRUCache[[]byte](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager(logger.Logger)
	manager.Register(lru)
	manager.StartCleanup(time.Minute)
	logger.Info("Using in-process view cache", "size", cfg.CacheSize, "ttl", cfg.CacheTTL.String())
	return cache.NewLocalViews(lru), manager.Stop, nil
}

// OpenMirror returns the Google Sheets mirror, or nil when no spreadsheet
// is configured.
func OpenMirror(ctx context.Context, cfg *config.Config) (sheets.Mirror, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		CredentialsFile: cfg.GoogleCredentialsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("google sheets: %w", err)
	}
	return client, nil
}

// NewEngine builds the analytics engine from the configured tunables.
func NewEngine(cfg *config.Config) *analytics.Engine {
	opts := analytics.DefaultOptions()
	opts.NeutralBand = cfg.ProjectionNeutralBand
	opts.ProjectionIncludesCurrentMonth = cfg.ProjectionIncludeCurrentMonth
	opts.EvolutionIncludesCurrentMonth = cfg.EvolutionIncludeCurrentMonth
	opts.RecurringTopN = cfg.RecurringTopN
	return analytics.New(opts, time.Now)
}

func NewIssuer(cfg *config.Config) (*auth.Issuer, error) {
	return auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
