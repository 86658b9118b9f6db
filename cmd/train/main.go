// backend/cmd/train/main.go
package main

import (
	"flag"
	"log"
	"os"

	"github.com/airhealth/backend/internal/config"
	"github.com/airhealth/backend/internal/database"
	"github.com/airhealth/backend/internal/dataset"
	"github.com/airhealth/backend/internal/forest"
	"github.com/airhealth/backend/internal/repository"
	"github.com/airhealth/backend/internal/trainer"
	"github.com/airhealth/backend/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	dataPath = flag.String("data", "", "Survey CSV export to train on (defaults to dataset.path from config)")
	outPath  = flag.String("out", "", "Artifact output path (defaults to model.path from config)")
	fromDB   = flag.Bool("from-db", false, "Train on rows from the survey database instead of a CSV export")
	trees    = flag.Int("trees", 0, "Number of trees in the ensemble (0 = default)")
	features = flag.Int("features", 0, "Candidate features per split (0 = default)")
	seed     = flag.Int64("seed", 0, "Training random seed (0 = default)")
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

	logger.Info("Starting training pipeline...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	data := *dataPath
	if data == "" {
		data = cfg.Dataset.Path
	}
	out := *outPath
	if out == "" {
		out = cfg.Model.Path
	}

	params := forest.DefaultHyperparameters()
	if *trees > 0 {
		params.Trees = *trees
	}
	if *features > 0 {
		params.FeatureSample = *features
	}
	if *seed != 0 {
		params.Seed = *seed
	}

	rows, err := loadRows(cfg, data, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load training rows")
	}
	logger.WithField("rows", len(rows)).Info("Training rows loaded")

	pipeline := trainer.New(params, logger)
	artifact, err := pipeline.Run(rows, out)
	if err != nil {
		logger.WithError(err).WithField("stage", string(pipeline.State())).Fatal("Training pipeline aborted")
	}

	logger.WithFields(logrus.Fields{
		"version": artifact.Version,
		"trees":   len(artifact.Forest.Trees),
		"seed":    params.Seed,
		"path":    out,
	}).Info("Training completed successfully!")
}

func loadRows(cfg *config.Config, data string, logger *logrus.Logger) ([]dataset.Record, error) {
	if !*fromDB {
		return dataset.LoadCSV(data)
	}

	dbConfig := &database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	dbManager, err := database.NewManager(dbConfig, logger)
	if err != nil {
		return nil, err
	}
	defer dbManager.Close()

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	responses, err := repoManager.SurveyResponse.GetAll()
	if err != nil {
		return nil, err
	}

	rows := make([]dataset.Record, 0, len(responses))
	for i := range responses {
		rows = append(rows, responses[i].Record())
	}
	return rows, nil
}
