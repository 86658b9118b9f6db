// Package trainer orchestrates the offline training pipeline:
// Loaded -> Encoded -> Balanced -> Fitted -> Persisted. Stages run strictly
// in order and any failure aborts the whole run with no partial artifact,
// so code tables can never desynchronize from the fitted forest.
package trainer

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/airhealth/backend/internal/balance"
	"github.com/airhealth/backend/internal/dataset"
	"github.com/airhealth/backend/internal/encoder"
	"github.com/airhealth/backend/internal/forest"
	"github.com/airhealth/backend/internal/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State tracks pipeline progress.
type State string

const (
	StateLoaded    State = "loaded"
	StateEncoded   State = "encoded"
	StateBalanced  State = "balanced"
	StateFitted    State = "fitted"
	StatePersisted State = "persisted"
)

// ErrInsufficientData reports a training set where at least one outcome
// class has zero rows.
var ErrInsufficientData = errors.New("insufficient training data: both outcome classes must be present")

// EncodingFailureError reports a training row missing a required field.
type EncodingFailureError struct {
	Row   int
	Field string
}

func (e *EncodingFailureError) Error() string {
	return fmt.Sprintf("encoding failure: row %d is missing field %q", e.Row, e.Field)
}

// Pipeline is a one-shot training run. It is not meant to run concurrently
// with itself.
type Pipeline struct {
	params forest.Hyperparameters
	logger *logrus.Logger
	state  State
}

func New(params forest.Hyperparameters, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		params: params,
		logger: logger,
	}
}

// State returns the furthest stage the pipeline reached.
func (p *Pipeline) State() State { return p.state }

// Run trains on the given survey rows and atomically persists the artifact
// at path. The artifact on disk is replaced only on full success.
func (p *Pipeline) Run(rows []dataset.Record, path string) (*model.Artifact, error) {
	artifact, err := p.Train(rows)
	if err != nil {
		return nil, err
	}

	if err := artifact.Save(path); err != nil {
		return nil, fmt.Errorf("persist stage failed: %w", err)
	}
	p.advance(StatePersisted, logrus.Fields{"path": path, "version": artifact.Version})

	return artifact, nil
}

// Train runs the in-memory stages (load through fit) and returns the
// assembled artifact without persisting it.
func (p *Pipeline) Train(rows []dataset.Record) (*model.Artifact, error) {
	// Load: both classes must be represented or the balancer and the
	// fitted trees are meaningless.
	positives := 0
	for _, row := range rows {
		if row.Positive() {
			positives++
		}
	}
	if positives == 0 || positives == len(rows) {
		return nil, ErrInsufficientData
	}
	p.advance(StateLoaded, logrus.Fields{
		"rows":      len(rows),
		"positives": positives,
		"negatives": len(rows) - positives,
	})

	// Encode: fit one code table per field, then vectorize every row.
	tables, X, y, err := p.encode(rows)
	if err != nil {
		return nil, err
	}
	p.advance(StateEncoded, logrus.Fields{"fields": len(dataset.FeatureFields)})

	// Balance: oversample the minority class to parity.
	rng := rand.New(rand.NewSource(p.params.Seed))
	balancedX, balancedY := balance.Oversample(X, y, rng)
	p.advance(StateBalanced, logrus.Fields{"balanced_rows": len(balancedX)})

	// Fit.
	fitted := forest.Fit(balancedX, balancedY, p.params)
	p.advance(StateFitted, logrus.Fields{"trees": len(fitted.Trees)})

	return &model.Artifact{
		Version:    uuid.NewString(),
		TrainedAt:  time.Now().UTC(),
		FieldOrder: append([]string(nil), dataset.FeatureFields...),
		CodeTables: tables,
		Forest:     fitted,
	}, nil
}

func (p *Pipeline) encode(rows []dataset.Record) (map[string]encoder.CodeTable, [][]float64, []int, error) {
	tables := make(map[string]encoder.CodeTable, len(dataset.FeatureFields))

	for _, field := range dataset.FeatureFields {
		column := make([]string, 0, len(rows))
		for i, row := range rows {
			value, ok := row[field]
			if !ok || value == "" {
				return nil, nil, nil, &EncodingFailureError{Row: i, Field: field}
			}
			column = append(column, value)
		}
		tables[field] = encoder.Fit(column)
	}

	X := make([][]float64, 0, len(rows))
	y := make([]int, 0, len(rows))
	for i, row := range rows {
		if row.Label() == "" {
			return nil, nil, nil, &EncodingFailureError{Row: i, Field: dataset.LabelField}
		}

		vector, err := encoder.Vectorize(row, tables, dataset.FeatureFields)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("encode stage failed on row %d: %w", i, err)
		}
		X = append(X, vector)

		label := 0
		if row.Positive() {
			label = 1
		}
		y = append(y, label)
	}

	return tables, X, y, nil
}

func (p *Pipeline) advance(next State, fields logrus.Fields) {
	p.state = next
	if p.logger != nil {
		p.logger.WithFields(fields).WithField("stage", string(next)).Info("Training stage completed")
	}
}
