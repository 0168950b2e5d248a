// Package main is the entry point for the FactuSystem reporting API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FAb114/factusystem-reports/internal/domain/audit"
	"github.com/FAb114/factusystem-reports/internal/domain/auth"
	"github.com/FAb114/factusystem-reports/internal/domain/reports"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/export"
	v1 "github.com/FAb114/factusystem-reports/internal/infrastructure/http/v1"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/storage/postgres"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/storage/postgres/report_repo"
	"github.com/FAb114/factusystem-reports/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting factusystem-reports server")

	// --- Database connection ---
	dsn := mustEnv("DATABASE_URL")
	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 25); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// Periodic pool stats for capacity monitoring
	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go func() {
		ticker := time.NewTicker(getEnvDuration("DB_STATS_INTERVAL", time.Minute))
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				postgres.LogPoolStats(statsCtx, pool.Unwrap())
			}
		}
	}()

	// --- Audit store ---
	var recorder audit.Recorder
	auditStore, err := postgres.NewAuditStore(pool.Unwrap())
	if err != nil {
		log.Warnw("audit store unavailable, continuing without audit", "error", err)
		recorder = audit.Nop{}
	} else {
		recorder = auditStore
	}

	// --- Report service ---
	reportRepo := report_repo.NewReportRepo(pool.Unwrap())
	reportService := reports.NewService(reportRepo, recorder)

	// --- PDF renderer (optional, needs Chrome) ---
	var pdfRenderer *export.PDFRenderer
	if getEnv("PDF_EXPORT_ENABLED", "true") == "true" {
		pdfRenderer = export.NewPDFRenderer(export.PDFConfig{
			Timeout:   getEnvDuration("PDF_RENDER_TIMEOUT", 30*time.Second),
			RemoteURL: getEnv("CHROME_REMOTE_URL", ""),
			NoSandbox: getEnv("CHROME_NO_SANDBOX", "false") == "true",
		})
		defer pdfRenderer.Close()
	}
	exporter := export.NewExporter(pdfRenderer)

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:          pool,
		Logger:        log,
		JWTValidator:  jwtService,
		ReportService: reportService,
		Exporter:      exporter,
		Recorder:      recorder,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
