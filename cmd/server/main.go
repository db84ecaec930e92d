package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"editorial-pipeline/internal/authz"
	"editorial-pipeline/internal/config"
	"editorial-pipeline/internal/handler"
	"editorial-pipeline/internal/infrastructure/database"
	"editorial-pipeline/internal/logger"
	"editorial-pipeline/internal/metrics"
	"editorial-pipeline/internal/middleware"
	"editorial-pipeline/internal/repository"
	"editorial-pipeline/internal/service"
	"editorial-pipeline/internal/storage"
	"editorial-pipeline/internal/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration",
			slog.String("error", err.Error()))
	}

	// Connect to database
	pool, err := database.NewPostgres(context.Background(), database.PoolConfig{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		Database:          cfg.DBName,
		SSLMode:           cfg.DBSSLMode,
		MaxConns:          cfg.DBMaxConns,
		MinConns:          cfg.DBMinConns,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database",
			slog.String("error", err.Error()))
	}
	defer pool.Close()

	// Start database pool metrics collector
	poolStatsCollector := metrics.NewPoolStatsCollector(pool)
	poolStatsCollector.Start(15 * time.Second)
	defer poolStatsCollector.Stop()

	// Initialize repositories
	articleRepo := repository.NewPostgresArticleRepository(pool)
	reviewRepo := repository.NewPostgresReviewRepository(pool)

	// Initialize blob store for cover images
	blobStore, err := storage.NewFSBlobStore(cfg.BlobDir, cfg.BlobBaseURL)
	if err != nil {
		logger.Fatal("Failed to create blob store",
			slog.String("error", err.Error()))
	}

	// Initialize authorization gate and validator
	gate := authz.NewGate()
	v := validator.NewValidator()

	// Initialize services
	articleService := service.NewArticleService(articleRepo, reviewRepo, gate, blobStore, v)

	// Initialize handlers
	articleHandler := handler.NewArticleHandler(articleService)
	healthHandler := handler.NewHealthHandler(pool, cfg.BlobDir)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(gin.Logger())

	// Health and metrics endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/live", healthHandler.Live)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Stored cover images
	router.Static(cfg.BlobBaseURL, cfg.BlobDir)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		articles := v1.Group("/articles")
		{
			articles.POST("", articleHandler.Create)
			articles.GET("", articleHandler.List)
			articles.GET("/:id", articleHandler.Get)
			articles.PATCH("/:id", articleHandler.Update)
			articles.DELETE("/:id", articleHandler.Delete)

			articles.POST("/:id/submit", articleHandler.Submit)
			articles.POST("/:id/review", articleHandler.StartEditorReview)
			articles.POST("/:id/revision", articleHandler.RequestRevision)
			articles.POST("/:id/approve", articleHandler.Approve)
			articles.POST("/:id/admin-review", articleHandler.StartAdminReview)
			articles.POST("/:id/reject", articleHandler.Reject)
			articles.POST("/:id/publish", articleHandler.Publish)

			articles.POST("/:id/highlights", articleHandler.UpdateHighlights)
			articles.POST("/:id/cover", articleHandler.ChangeCover)
			articles.GET("/:id/history", articleHandler.History)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server",
			slog.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server",
				slog.String("error", err.Error()))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error",
			slog.String("error", err.Error()))
	}

	logger.Info("Server exited")
}
