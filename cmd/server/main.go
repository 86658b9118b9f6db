// backend/cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airhealth/backend/internal/analytics"
	"github.com/airhealth/backend/internal/api/handlers"
	"github.com/airhealth/backend/internal/aqi"
	"github.com/airhealth/backend/internal/config"
	"github.com/airhealth/backend/internal/database"
	"github.com/airhealth/backend/internal/health"
	"github.com/airhealth/backend/internal/middleware"
	"github.com/airhealth/backend/internal/model"
	"github.com/airhealth/backend/internal/predictor"
	"github.com/airhealth/backend/internal/repository"
	"github.com/airhealth/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting community health API server...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Load the trained model artifact first: serving predictions with a
	// missing or partially loaded model is worse than not serving at all.
	artifact, err := model.Load(cfg.Model.Path)
	if err != nil {
		logger.WithError(err).WithField("path", cfg.Model.Path).Fatal("Failed to load model artifact")
	}
	logger.WithFields(map[string]interface{}{
		"version": artifact.Version,
		"trees":   len(artifact.Forest.Trees),
		"fields":  len(artifact.FieldOrder),
	}).Info("Model artifact loaded")

	dbConfig := &database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	dbManager, err := database.NewManager(dbConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	// Services
	predictService := predictor.New(artifact, logger)
	analyticsService := analytics.NewService(repoManager.SurveyResponse, cache, logger)
	aqiFetcher := aqi.NewFetcher(cfg.AQI.City, cfg.AQI.URL, cfg.AQI.Selector, cache, logger)

	// Health checks
	checker := health.NewHealthChecker(dbManager, artifact, logger)
	healthCtx, cancelHealth := context.WithCancel(context.Background())
	defer cancelHealth()
	go checker.PeriodicHealthCheck(healthCtx, 30*time.Second)

	// Handlers
	predictHandler := handlers.NewPredictHandler(predictService, logger)
	dashboardHandler := handlers.NewDashboardHandler(analyticsService, aqiFetcher, logger)

	router := setupRouter(predictHandler, dashboardHandler, checker)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

func setupRouter(
	predictHandler *handlers.PredictHandler,
	dashboardHandler *handlers.DashboardHandler,
	checker *health.HealthChecker,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())

	rateLimiter := middleware.NewRateLimiter(120)
	router.Use(rateLimiter.RateLimit())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Community Health API"})
	})

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		overall, err := checker.CheckCached(ctx)
		if err != nil {
			fresh := checker.CheckAll()
			overall = &fresh
		}

		code := http.StatusOK
		if overall.Status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, overall)
	})

	api := router.Group("/api")
	{
		api.GET("/stats", dashboardHandler.HandleStats)
		api.GET("/charts/:chart", dashboardHandler.HandleChart)
		api.GET("/aqi", dashboardHandler.HandleAQI)
		api.GET("/filters", predictHandler.HandleFilters)
		api.GET("/predict", predictHandler.HandlePredict)
	}

	return router
}
