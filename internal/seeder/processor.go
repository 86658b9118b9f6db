// backend/internal/seeder/processor.go
package seeder

import (
	"fmt"

	"github.com/airhealth/backend/internal/dataset"
	"github.com/airhealth/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Processor ingests a questionnaire CSV export into the survey store.
type Processor struct {
	repo   models.SurveyResponseRepository
	logger *logrus.Logger
	errors []error
}

// Options control a seeding run.
type Options struct {
	// DryRun parses and validates without writing to the database.
	DryRun bool
	// Limit caps the number of rows ingested (0 = all).
	Limit int
}

func NewProcessor(repo models.SurveyResponseRepository, logger *logrus.Logger) *Processor {
	return &Processor{
		repo:   repo,
		logger: logger,
		errors: make([]error, 0),
	}
}

// Errors returns per-row failures collected during the last run.
func (p *Processor) Errors() []error { return p.errors }

// Seed loads the CSV at path and writes valid rows in batches. Rows that
// fail validation are collected and skipped rather than aborting the run.
func (p *Processor) Seed(path string, opts Options) (int, error) {
	p.errors = p.errors[:0]

	records, err := dataset.LoadCSV(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load survey export: %w", err)
	}

	if opts.Limit > 0 && opts.Limit < len(records) {
		records = records[:opts.Limit]
		p.logger.WithField("limit", opts.Limit).Info("Limited rows to ingest")
	}

	p.logger.WithField("total_rows", len(records)).Info("Processing survey export")

	batch := make([]*models.SurveyResponse, 0, len(records))
	for i, record := range records {
		response := models.FromRecord(record)
		if err := response.Validate(); err != nil {
			p.logger.WithError(err).WithField("row", i+1).Warn("Skipping invalid survey row")
			p.errors = append(p.errors, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		batch = append(batch, response)
	}

	if opts.DryRun {
		p.logger.WithFields(logrus.Fields{
			"valid_rows":   len(batch),
			"invalid_rows": len(p.errors),
		}).Info("DRY RUN: would ingest survey rows")
		return len(batch), nil
	}

	if err := p.repo.CreateBatch(batch); err != nil {
		return 0, fmt.Errorf("failed to insert survey rows: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"ingested": len(batch),
		"skipped":  len(p.errors),
	}).Info("Survey export ingested")

	return len(batch), nil
}
