// Package main is the entry point for the Sunset marketplace server.
// Sunset is a digital-goods marketplace API: users, a product catalog
// with signed upload/download URLs for product files, and orders.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/cache/memory"
	rediscache "github.com/UkemeSkywalker/sunset-digital-marketplace/internal/cache/redis"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/config"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/handler"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/metrics"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/pkg/crypto"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository/postgres"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository/sqlite"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/service"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/signer"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Starting Sunset Marketplace Server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Record store
	repos, dbHealth, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize record store")
	}
	defer dbHealth.Close()

	// Object store
	store, sig, err := newObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object store")
	}

	// Optional product read cache
	productCache, stopCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize cache")
	}
	if stopCache != nil {
		defer stopCache()
	}

	// Services
	userService := service.NewUserService(repos.Users, logger)
	productService := service.NewProductService(service.ProductServiceConfig{
		Products:       repos.Products,
		Store:          store,
		Cache:          productCache,
		CacheTTL:       cfg.Cache.TTL,
		UploadURLTTL:   cfg.Storage.UploadURLTTL,
		DownloadURLTTL: cfg.Storage.DownloadURLTTL,
		Logger:         logger,
	})
	orderService := service.NewOrderService(repos.Orders, logger)
	adminService := service.NewAdminService(repos.Users, repos.Products, logger)

	// HTTP surface
	routerCfg := handler.RouterConfig{
		Server:   cfg.Server,
		Users:    handler.NewUserHandler(userService, logger),
		Products: handler.NewProductHandler(productService, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Admin:    handler.NewAdminHandler(adminService, logger),
		Metrics:  cfg.Metrics.Enabled,
		Logger:   logger,
	}
	if sig != nil {
		routerCfg.Files = handler.NewFilesHandler(store, sig, logger)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(
			fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			cfg.Metrics.Path,
			logger,
		)
		go func() {
			if err := metricsSrv.Start(); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down server...")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics shutdown failed")
		}
	}
	logger.Info().Msg("server stopped")
}

// newLogger builds the process logger from the logging config.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// newRepositories builds the record store for the configured driver.
func newRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, repository.DatabaseHealth, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		users, err := postgres.NewUserRepository(ctx, db, cfg.Tables.Users)
		if err != nil {
			return nil, nil, err
		}
		products, err := postgres.NewProductRepository(ctx, db, cfg.Tables.Products)
		if err != nil {
			return nil, nil, err
		}
		orders, err := postgres.NewOrderRepository(ctx, db, cfg.Tables.Orders)
		if err != nil {
			return nil, nil, err
		}
		return &repository.Repositories{Users: users, Products: products, Orders: orders}, db, nil

	default:
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			CacheSize:       cfg.Database.CacheSize,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		users, err := sqlite.NewUserRepository(ctx, db, cfg.Tables.Users)
		if err != nil {
			return nil, nil, err
		}
		products, err := sqlite.NewProductRepository(ctx, db, cfg.Tables.Products)
		if err != nil {
			return nil, nil, err
		}
		orders, err := sqlite.NewOrderRepository(ctx, db, cfg.Tables.Orders)
		if err != nil {
			return nil, nil, err
		}
		return &repository.Repositories{Users: users, Products: products, Orders: orders}, db, nil
	}
}

// newObjectStore builds the object store for the configured backend.
// The returned signer is non-nil only for the local backend, whose
// signed URLs are served by this process.
func newObjectStore(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (storage.Store, *signer.Signer, error) {
	switch cfg.Backend {
	case "s3":
		store, err := storage.NewS3Store(ctx, cfg.S3, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	default:
		key, err := crypto.DeriveKey(cfg.Local.Secret, "transfer-url-signing")
		if err != nil {
			return nil, nil, err
		}
		sig := signer.New(key, cfg.Local.BaseURL)
		store, err := storage.NewLocalStore(cfg.Local.DataDir, cfg.Local.BaseURL, sig, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, sig, nil
	}
}

// newCache builds the optional product read cache. The returned stop
// function, when non-nil, releases cache resources on shutdown.
func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Cache, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, nil, nil
	}

	switch cfg.Cache.Backend {
	case "redis":
		c, err := rediscache.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { c.Close() }, nil

	default:
		c := memory.NewCache()
		return c, c.Stop, nil
	}
}
