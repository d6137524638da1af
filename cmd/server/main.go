// Command server runs the journal backend: HTTP API, SQLite persistence,
// the optional flat-file snapshot mirror, and the remote assistant client.
//
// Configuration comes from the environment (a local .env file is honored in
// development). The process degrades gracefully: a missing assistant API key
// disables reflections and insights with a warning instead of refusing to
// start, and OpenTelemetry export is wired only when enabled.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/mindease/go-journal-backend/internal/assistant"
	"github.com/mindease/go-journal-backend/internal/config"
	"github.com/mindease/go-journal-backend/internal/filestore"
	httpapi "github.com/mindease/go-journal-backend/internal/http"
	"github.com/mindease/go-journal-backend/internal/observability"
	"github.com/mindease/go-journal-backend/internal/repo"
	"github.com/mindease/go-journal-backend/internal/sysutil"
)

// version is stamped via -ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is a development convenience; absence is not an error.
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg := config.MustLoad()

	// Logging
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	// Tracing
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Storage
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database failed")
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			log.Warn().Err(err).Msg("gorm tracing plugin failed")
		}
	}

	var files *filestore.Store
	if cfg.FilestorePath != "" {
		files = filestore.New(cfg.FilestorePath)
		log.Info().Str("path", cfg.FilestorePath).Msg("filestore mirror enabled")
	}

	// Remote assistant
	asst := assistant.New(cfg.Assistant.APIKey, cfg.Assistant.BaseURL, cfg.Assistant.Model, cfg.Assistant.Timeout, log.Logger)
	if !asst.Enabled() {
		log.Warn().Msg("assistant api key missing: reflections, chat, and insights run on fallbacks")
	}

	// HTTP transport
	r := gin.New()
	httpapi.RegisterRoutes(r, db, files, asst, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
