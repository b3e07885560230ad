package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/PratikDhanave/njrotc-portal-api/internal/config"
	"github.com/PratikDhanave/njrotc-portal-api/internal/content"
	"github.com/PratikDhanave/njrotc-portal-api/internal/httpserver"
	"github.com/PratikDhanave/njrotc-portal-api/internal/logging"
	"github.com/PratikDhanave/njrotc-portal-api/internal/mailer"
	"github.com/PratikDhanave/njrotc-portal-api/internal/mailtmpl"
	"github.com/PratikDhanave/njrotc-portal-api/internal/metrics"
	"github.com/PratikDhanave/njrotc-portal-api/internal/store"
)

// main boots the service: config → logger → templates/content → optional DB → HTTP server.
func main() {
	// Load runtime config from .env and the environment.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Development())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	renderer, err := mailtmpl.New(cfg.Mail.Location)
	if err != nil {
		logger.Fatal("failed to parse email templates", zap.Error(err))
	}

	registry, err := content.Load(content.DefaultCollections(cfg.ContentDir))
	if err != nil {
		logger.Fatal("failed to load content collections", zap.Error(err))
	}
	for _, name := range registry.Names() {
		entries, _ := registry.List(name)
		logger.Info("content collection loaded", zap.String("collection", name), zap.Int("entries", len(entries)))
	}

	deps := httpserver.Deps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics.New(),
		Mailer:   mailer.NewSMTPFactory(),
		Renderer: renderer,
		Content:  registry,
	}

	// The submission log is optional; the forms work without it.
	if cfg.DBURL != "" {
		db, err := store.NewPostgresStore(cfg.DBURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		// Ensure required tables/indexes exist so a fresh database is enough.
		if err := db.EnsureSchema(); err != nil {
			logger.Fatal("failed to apply schema", zap.Error(err))
		}
		deps.Store = db
	}

	if cfg.TestMode() {
		logger.Warn("test mode active: submissions are accepted but no email is sent")
	}

	srv := httpserver.New(":"+cfg.Port, httpserver.NewRouter(deps))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
