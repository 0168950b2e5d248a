// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/FAb114/factusystem-reports/internal/domain/audit"
	"github.com/FAb114/factusystem-reports/internal/domain/reports"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/export"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/http/v1/handlers"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/http/v1/middleware"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/storage/postgres"
	"github.com/FAb114/factusystem-reports/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (used by health checks).
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// ReportService generates all reports.
	ReportService *reports.Service

	// Exporter serializes reports for download.
	Exporter *export.Exporter

	// Recorder receives audit entries for exports.
	Recorder audit.Recorder
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		baseHandler := handlers.NewBaseHandler()
		reportsGroup := protected.Group("/reports")

		reportHandler := handlers.NewReportsHandler(baseHandler, cfg.ReportService)
		reportHandler.RegisterRoutes(reportsGroup)

		exportHandler := handlers.NewExportsHandler(baseHandler, cfg.ReportService, cfg.Exporter, cfg.Recorder)
		exportHandler.RegisterRoutes(reportsGroup)
	}

	return router
}
