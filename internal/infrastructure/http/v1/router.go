// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"docserial/internal/core/numerator"
	"docserial/internal/infrastructure/http/v1/handlers"
	"docserial/internal/infrastructure/http/v1/middleware"
	"docserial/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Health serves /health/*
	Health *handlers.HealthHandler

	// Allocator hands out document identifiers
	Allocator numerator.Allocator

	// Registry backs the prefix admin endpoints
	Registry numerator.PrefixRegistry

	// AllowedTargets restricts allocation to these table/column pairs; empty allows any
	AllowedTargets []numerator.Target

	// TokenValidator guards every /api/v1 endpoint; nil leaves them open
	TokenValidator middleware.TokenValidator
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if cfg.Health != nil {
		health := router.Group("/health")
		{
			health.GET("/live", cfg.Health.Live)
			health.GET("/ready", cfg.Health.Ready)
			health.GET("/info", cfg.Health.Info)
		}
	}

	baseHandler := handlers.NewBaseHandler()

	guarded := cfg.TokenValidator != nil

	v1 := router.Group("/api/v1")
	if guarded {
		v1.Use(middleware.Auth(cfg.TokenValidator))
	}
	{
		RegisterIDRoutes(v1.Group("/ids"),
			handlers.NewIDHandler(baseHandler, cfg.Allocator, cfg.AllowedTargets...), guarded)

		if cfg.Registry != nil {
			RegisterPrefixRoutes(v1.Group("/prefixes"),
				handlers.NewPrefixHandler(baseHandler, cfg.Registry), guarded)
		}
	}

	return router
}
