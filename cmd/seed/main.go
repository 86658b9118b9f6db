// backend/cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/airhealth/backend/internal/analytics"
	"github.com/airhealth/backend/internal/config"
	"github.com/airhealth/backend/internal/database"
	"github.com/airhealth/backend/internal/repository"
	"github.com/airhealth/backend/internal/seeder"
	"github.com/airhealth/backend/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	dataPath = flag.String("data", "", "Survey CSV export to ingest (defaults to dataset.path from config)")
	dryRun   = flag.Bool("dry-run", false, "Parse and validate without writing to the database")
	rowLimit = flag.Int("limit", 0, "Limit number of rows to ingest (0 = all)")
	verbose  = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Starting survey data seeder...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	data := *dataPath
	if data == "" {
		data = cfg.Dataset.Path
	}

	var repoManager *repository.RepositoryManager
	var cache *database.Cache

	if !*dryRun {
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

		repoManager = repository.NewRepositoryManager(dbManager.DB)
		cache = database.NewCache(dbManager.Redis, logger)
	}

	var processor *seeder.Processor
	if repoManager != nil {
		processor = seeder.NewProcessor(repoManager.SurveyResponse, logger)
	} else {
		processor = seeder.NewProcessor(nil, logger)
	}

	ingested, err := processor.Seed(data, seeder.Options{
		DryRun: *dryRun,
		Limit:  *rowLimit,
	})
	if err != nil {
		logger.WithError(err).Fatal("Seeding failed")
	}

	// Stale dashboard aggregates would misreport the new data.
	if cache != nil {
		if err := cache.InvalidateDashboard(context.Background(), analytics.ChartNames()); err != nil {
			logger.WithError(err).Warn("Failed to invalidate dashboard cache")
		}
	}

	logger.WithFields(logrus.Fields{
		"ingested": ingested,
		"errors":   len(processor.Errors()),
	}).Info("Seeding completed successfully!")
}
