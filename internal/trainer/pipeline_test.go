package trainer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/airhealth/backend/internal/dataset"
	"github.com/airhealth/backend/internal/forest"
	"github.com/airhealth/backend/internal/model"
	"github.com/airhealth/backend/internal/predictor"
	"github.com/airhealth/backend/internal/trainer"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lowRiskProfile = dataset.Record{
	"Age Group":               "18-30",
	"Housing Type":            "Concrete",
	"Dust Entry Frequency":    "Rarely",
	"Worst Pollution Season":  "Summer",
	"Morning Chest Heaviness": "No",
	"Wheezing Sound":          "No",
	"Eye/Throat Irritation":   "Rarely",
	"Open Drains Nearby":      "No",
	"Foul Smell Daily":        "No",
	"Construction Pollution":  "No",
}

var highRiskProfile = dataset.Record{
	"Age Group":               "46-60",
	"Housing Type":            "Kutcha",
	"Dust Entry Frequency":    "Daily",
	"Worst Pollution Season":  "Winter",
	"Morning Chest Heaviness": "Yes",
	"Wheezing Sound":          "Yes",
	"Eye/Throat Irritation":   "Often",
	"Open Drains Nearby":      "Yes",
	"Foul Smell Daily":        "Yes",
	"Construction Pollution":  "Yes",
}

func cloneWithLabel(profile dataset.Record, label string) dataset.Record {
	row := make(dataset.Record, len(profile)+1)
	for k, v := range profile {
		row[k] = v
	}
	row[dataset.LabelField] = label
	return row
}

// skewedRows builds 100 negative and 10 positive survey rows.
func skewedRows() []dataset.Record {
	rows := make([]dataset.Record, 0, 110)
	for i := 0; i < 100; i++ {
		rows = append(rows, cloneWithLabel(lowRiskProfile, "No"))
	}
	for i := 0; i < 10; i++ {
		rows = append(rows, cloneWithLabel(highRiskProfile, "Yes"))
	}
	return rows
}

func testParams() forest.Hyperparameters {
	return forest.Hyperparameters{Trees: 25, FeatureSample: 3, Seed: 38}
}

func TestPipeline_Train(t *testing.T) {
	pipeline := trainer.New(testParams(), logrus.New())

	artifact, err := pipeline.Train(skewedRows())
	require.NoError(t, err)

	assert.Equal(t, trainer.StateFitted, pipeline.State())
	assert.NotEmpty(t, artifact.Version)
	assert.False(t, artifact.TrainedAt.IsZero())
	assert.Equal(t, dataset.FeatureFields, artifact.FieldOrder)
	require.Len(t, artifact.CodeTables, len(dataset.FeatureFields))
	require.NotNil(t, artifact.Forest)
	assert.Len(t, artifact.Forest.Trees, 25)
}

func TestPipeline_TrainedModelSeparatesProfiles(t *testing.T) {
	pipeline := trainer.New(testParams(), logrus.New())

	artifact, err := pipeline.Train(skewedRows())
	require.NoError(t, err)

	service := predictor.New(artifact, logrus.New())

	low, err := service.Predict(lowRiskProfile)
	require.NoError(t, err)
	assert.Less(t, low.Probability, 0.20)
	assert.Equal(t, predictor.TierLow, low.RiskTier)

	high, err := service.Predict(highRiskProfile)
	require.NoError(t, err)
	assert.Greater(t, high.Probability, 0.35)
	assert.Equal(t, predictor.TierHigh, high.RiskTier)
}

func TestPipeline_Run_PersistsArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	pipeline := trainer.New(testParams(), logrus.New())

	artifact, err := pipeline.Run(skewedRows(), path)
	require.NoError(t, err)
	assert.Equal(t, trainer.StatePersisted, pipeline.State())

	loaded, err := model.Load(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Version, loaded.Version)
}

func TestPipeline_Run_NoPartialArtifactOnPersistFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	path := filepath.Join(dir, "model.json")
	pipeline := trainer.New(testParams(), logrus.New())

	_, err := pipeline.Run(skewedRows(), path)
	require.Error(t, err)
	assert.NotEqual(t, trainer.StatePersisted, pipeline.State())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipeline_Train_SingleClassAborts(t *testing.T) {
	rows := make([]dataset.Record, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, cloneWithLabel(lowRiskProfile, "No"))
	}

	pipeline := trainer.New(testParams(), logrus.New())
	_, err := pipeline.Train(rows)

	require.ErrorIs(t, err, trainer.ErrInsufficientData)
}

func TestPipeline_Train_AllPositiveAborts(t *testing.T) {
	rows := make([]dataset.Record, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, cloneWithLabel(highRiskProfile, "Yes"))
	}

	pipeline := trainer.New(testParams(), logrus.New())
	_, err := pipeline.Train(rows)

	require.ErrorIs(t, err, trainer.ErrInsufficientData)
}

func TestPipeline_Train_MissingFieldAborts(t *testing.T) {
	rows := skewedRows()
	delete(rows[3], "Housing Type")

	pipeline := trainer.New(testParams(), logrus.New())
	_, err := pipeline.Train(rows)
	require.Error(t, err)

	var failure *trainer.EncodingFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 3, failure.Row)
	assert.Equal(t, "Housing Type", failure.Field)
}

func TestPipeline_Train_MissingLabelAborts(t *testing.T) {
	rows := skewedRows()
	rows[7][dataset.LabelField] = ""

	pipeline := trainer.New(testParams(), logrus.New())
	_, err := pipeline.Train(rows)
	require.Error(t, err)

	var failure *trainer.EncodingFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, dataset.LabelField, failure.Field)
}

func TestPipeline_Train_Deterministic(t *testing.T) {
	first, err := trainer.New(testParams(), logrus.New()).Train(skewedRows())
	require.NoError(t, err)

	second, err := trainer.New(testParams(), logrus.New()).Train(skewedRows())
	require.NoError(t, err)

	assert.Equal(t, first.CodeTables, second.CodeTables)
	assert.Equal(t, first.Forest.Trees, second.Forest.Trees)
}
