package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/airhealth/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo serves a fixed response set without a database.
type fakeRepo struct {
	responses []models.SurveyResponse
	err       error
}

func (f *fakeRepo) Create(*models.SurveyResponse) error { return nil }

func (f *fakeRepo) CreateBatch([]*models.SurveyResponse) error { return nil }

func (f *fakeRepo) Count() (int64, error) { return int64(len(f.responses)), nil }

func (f *fakeRepo) GetAll() ([]models.SurveyResponse, error) {
	return f.responses, f.err
}

func (f *fakeRepo) DistinctValues(string) ([]string, error) { return nil, nil }

func sampleResponses() []models.SurveyResponse {
	return []models.SurveyResponse{
		{
			AgeGroup:              "18-30",
			Gender:                "Female",
			HousingType:           "Concrete",
			DustEntryFrequency:    "Daily",
			WorstPollutionSeason:  "Winter",
			HealthSymptoms:        "Cough, Sneezing",
			MorningChestHeaviness: "Yes",
			WheezingSound:         "Yes",
			EyeThroatIrritation:   "Often",
			DoctorVisitBreathing:  "Yes",
			ConstructionPollution: "Yes",
			AQIAwareness:          "Yes, I check it",
		},
		{
			AgeGroup:              "18-30",
			Gender:                "Male",
			HousingType:           "Concrete",
			DustEntryFrequency:    "Rarely",
			WorstPollutionSeason:  "Winter",
			HealthSymptoms:        "Cough",
			MorningChestHeaviness: "No",
			WheezingSound:         "No",
			EyeThroatIrritation:   "Rarely",
			DoctorVisitBreathing:  "No",
			ConstructionPollution: "Yes",
			AQIAwareness:          "No, never heard of it",
		},
		{
			AgeGroup:              "46-60",
			Gender:                "Male",
			HousingType:           "Kutcha",
			DustEntryFrequency:    "Daily",
			WorstPollutionSeason:  "Summer",
			HealthSymptoms:        "",
			MorningChestHeaviness: "Yes",
			WheezingSound:         "Yes",
			EyeThroatIrritation:   "Often",
			DoctorVisitBreathing:  "Yes",
			ConstructionPollution: "Maybe",
			AQIAwareness:          "Yes, I check it",
		},
		{
			AgeGroup:              "46-60",
			Gender:                "Female",
			HousingType:           "Tiled",
			DustEntryFrequency:    "Sometimes",
			WorstPollutionSeason:  "Winter",
			HealthSymptoms:        "Sneezing",
			MorningChestHeaviness: "No",
			WheezingSound:         "No",
			EyeThroatIrritation:   "Rarely",
			DoctorVisitBreathing:  "No",
			ConstructionPollution: "Yes",
			AQIAwareness:          "No, never heard of it",
		},
	}
}

func newTestService(repo models.SurveyResponseRepository) *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewService(repo, nil, logger)
}

func TestService_Stats(t *testing.T) {
	service := newTestService(&fakeRepo{responses: sampleResponses()})

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalResponses)
	assert.Equal(t, 2, stats.DoctorVisitsYes)
	assert.Equal(t, 50.0, stats.HealthcareUtilization)
	assert.Equal(t, 50.0, stats.WheezingPrevalence)
	assert.Equal(t, 50.0, stats.AQIAwareness)
	assert.Equal(t, "Yes", stats.ConstructionPollutionBelief)
}

func TestService_Stats_EmptyDataset(t *testing.T) {
	service := newTestService(&fakeRepo{})

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalResponses)
	assert.Equal(t, 0.0, stats.HealthcareUtilization)
}

func TestService_Stats_RepositoryError(t *testing.T) {
	service := newTestService(&fakeRepo{err: errors.New("connection refused")})

	_, err := service.Stats(context.Background())

	assert.Error(t, err)
}

func TestService_Chart_Housing(t *testing.T) {
	service := newTestService(&fakeRepo{responses: sampleResponses()})

	points, err := service.Chart(context.Background(), "housing")
	require.NoError(t, err)

	assert.Equal(t, []models.ChartPoint{
		{Name: "Concrete", Value: 2},
		{Name: "Kutcha", Value: 1},
		{Name: "Tiled", Value: 1},
	}, points)
}

func TestService_Chart_DoctorVisitsByAge(t *testing.T) {
	service := newTestService(&fakeRepo{responses: sampleResponses()})

	points, err := service.Chart(context.Background(), "doctor-visits")
	require.NoError(t, err)

	assert.Equal(t, []models.ChartPoint{
		{Name: "18-30", Value: 1},
		{Name: "46-60", Value: 1},
	}, points)
}

func TestService_Chart_SymptomsExplodeMultiSelect(t *testing.T) {
	service := newTestService(&fakeRepo{responses: sampleResponses()})

	points, err := service.Chart(context.Background(), "symptoms")
	require.NoError(t, err)

	assert.Equal(t, []models.ChartPoint{
		{Name: "Cough", Value: 2},
		{Name: "Sneezing", Value: 2},
	}, points)
}

func TestService_Chart_Season(t *testing.T) {
	service := newTestService(&fakeRepo{responses: sampleResponses()})

	points, err := service.Chart(context.Background(), "season")
	require.NoError(t, err)

	assert.Equal(t, []models.ChartPoint{
		{Name: "Winter", Value: 3},
		{Name: "Summer", Value: 1},
	}, points)
}

func TestService_Chart_Unknown(t *testing.T) {
	service := newTestService(&fakeRepo{responses: sampleResponses()})

	_, err := service.Chart(context.Background(), "favourite-colour")

	require.ErrorIs(t, err, ErrUnknownChart)
}

func TestService_Chart_AllNamesServed(t *testing.T) {
	service := newTestService(&fakeRepo{responses: sampleResponses()})

	for _, name := range ChartNames() {
		_, err := service.Chart(context.Background(), name)
		assert.NoError(t, err, "chart %q", name)
	}
}
