// Package main is the entry point for the docserial API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"docserial/internal/config"
	v1 "docserial/internal/infrastructure/http/v1"
	"docserial/internal/infrastructure/http/v1/handlers"
	"docserial/internal/infrastructure/auth"
	"docserial/internal/infrastructure/numerator"
	"docserial/internal/infrastructure/storage/postgres"
	"docserial/internal/infrastructure/storage/postgres/migrate"
	"docserial/pkg/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.FromEnv()
	if err == nil {
		err = cfg.RequireDatabase()
	}
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting docserial server", "version", version)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.AutoMigrate {
		if err := migrate.Up(pool.Unwrap()); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
		log.Info("migrations applied")
	}

	// --- Allocator ---
	stackCfg := numerator.DefaultStackConfig()
	stackCfg.Tx.LockTimeout = cfg.TxLockTimeout
	stackCfg.Tx.StatementTimeout = cfg.TxStatementTimeout
	stackCfg.Retry.MaxAttempts = cfg.AllocMaxAttempts
	stackCfg.PrefixTable = cfg.PrefixTable

	stack := numerator.NewPostgresStack(pool, stackCfg,
		numerator.WithLocation(cfg.Location),
		numerator.WithLogger(log),
	)
	log.Infow("allocator initialized",
		"lock_timeout", cfg.TxLockTimeout,
		"max_attempts", cfg.AllocMaxAttempts,
		"timezone", cfg.Location.String(),
	)

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Logger:    log,
		Health:    handlers.NewHealthHandler(pool, version),
		Allocator: stack.Allocator,
		Registry:  stack.Registry,

		AllowedTargets: cfg.AllocTargets,
	}
	if cfg.AdminJWTSecret != "" {
		jwtService, err := auth.NewJWTService(auth.DefaultJWTConfig(cfg.AdminJWTSecret))
		if err != nil {
			log.Fatalw("failed to configure admin auth", "error", err)
		}
		routerCfg.TokenValidator = jwtService
	} else {
		log.Warn("ADMIN_JWT_SECRET not set, API endpoints are unauthenticated")
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Infow("database pool stats", "stats", pool.Stats())
	log.Info("server stopped")
}
