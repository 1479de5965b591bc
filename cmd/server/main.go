// Command server runs the personal-site backend: analytics ingestion and
// reporting, online-visitor presence, and cached Code::Stats views, exposed
// over a Gin HTTP API with structured logging, Prometheus metrics, and
// optional OpenTelemetry tracing.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/aalmaz/go-site-backend/internal/cache"
	"github.com/aalmaz/go-site-backend/internal/config"
	httpapi "github.com/aalmaz/go-site-backend/internal/http"
	"github.com/aalmaz/go-site-backend/internal/observability"
	"github.com/aalmaz/go-site-backend/internal/repo"
	"github.com/aalmaz/go-site-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load .env first so config.Load sees it. Absence is fine in production.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	cfg := config.MustLoad()

	// Logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	gin.SetMode(cfg.GinMode)

	// Tracing (no-op unless enabled)
	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	// Storage
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin failed")
		}
	}

	store, closeStore, err := openCacheStore(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.CacheBackend).Msg("open cache store failed")
	}
	defer closeStore()

	// HTTP
	r := gin.New()
	httpapi.RegisterRoutes(r, db, store, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// openCacheStore selects the cache backend: the default shares the SQLite
// database, "badger" opens a dedicated TTL-native key-value store.
func openCacheStore(cfg config.Config, db *gorm.DB) (cache.Store, func(), error) {
	if cfg.CacheBackend == "badger" {
		bdb, err := cache.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := bdb.Close(); err != nil {
				log.Warn().Err(err).Msg("badger close failed")
			}
		}
		return cache.NewBadgerStore(bdb), closer, nil
	}
	return cache.NewSQLStore(db), func() {}, nil
}
