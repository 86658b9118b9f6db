package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/airhealth/backend/internal/encoder"
	"github.com/airhealth/backend/internal/forest"
	"github.com/airhealth/backend/internal/model"
	"github.com/airhealth/backend/internal/predictor"
	"github.com/airhealth/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// predictArtifact fits a full ten-field model where "Wheezing Sound" alone
// decides the outcome.
func predictArtifact(t *testing.T) *model.Artifact {
	t.Helper()

	vocab := map[string][]string{
		"Age Group":               {"18-30", "46-60"},
		"Housing Type":            {"Concrete", "Kutcha"},
		"Dust Entry Frequency":    {"Daily", "Rarely"},
		"Worst Pollution Season":  {"Summer", "Winter"},
		"Morning Chest Heaviness": {"No", "Yes"},
		"Wheezing Sound":          {"No", "Yes"},
		"Eye/Throat Irritation":   {"Often", "Rarely"},
		"Open Drains Nearby":      {"No", "Yes"},
		"Foul Smell Daily":        {"No", "Yes"},
		"Construction Pollution":  {"No", "Yes"},
	}

	order := []string{
		"Age Group", "Housing Type", "Dust Entry Frequency",
		"Worst Pollution Season", "Morning Chest Heaviness",
		"Wheezing Sound", "Eye/Throat Irritation",
		"Open Drains Nearby", "Foul Smell Daily", "Construction Pollution",
	}

	tables := make(map[string]encoder.CodeTable, len(vocab))
	for field, values := range vocab {
		tables[field] = encoder.Fit(values)
	}

	// Wheezing Sound sits at index 5 in the field order.
	var X [][]float64
	var y []int
	for i := 0; i < 20; i++ {
		negative := []float64{0, 0, float64(i % 2), 0, 0, 0, float64(i % 2), 0, 0, 0}
		positive := []float64{1, 1, float64(i % 2), 1, 1, 1, float64(i % 2), 1, 1, 1}
		X = append(X, negative, positive)
		y = append(y, 0, 1)
	}

	artifact := &model.Artifact{
		Version:    "test-model",
		TrainedAt:  time.Now().UTC(),
		FieldOrder: order,
		CodeTables: tables,
		Forest:     forest.Fit(X, y, forest.Hyperparameters{Trees: 25, FeatureSample: 3, Seed: 38}),
	}
	require.NoError(t, artifact.Validate())
	return artifact
}

func predictRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := predictor.New(predictArtifact(t), logrus.New())
	handler := NewPredictHandler(service, logrus.New())

	router := gin.New()
	router.GET("/api/predict", handler.HandlePredict)
	router.GET("/api/filters", handler.HandleFilters)
	return router
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()

	var response utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

const highRiskQuery = "/api/predict?age_group=46-60&housing_type=Kutcha&dust_entry=Daily" +
	"&season=Winter&chest_heaviness=Yes&wheezing=Yes&eye_irritation=Often" +
	"&open_drains=Yes&foul_smell=Yes&construction=Yes"

func TestHandlePredict(t *testing.T) {
	router := predictRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", highRiskQuery, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	assert.True(t, response.Success)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "High", data["risk_tier"])
	assert.Equal(t, "test-model", data["model_version"])

	probability, ok := data["probability"].(float64)
	require.True(t, ok)
	assert.Greater(t, probability, 0.35)

	inputs, ok := data["inputs"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Yes", inputs["Wheezing Sound"])
}

func TestHandlePredict_MissingField(t *testing.T) {
	router := predictRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/predict?age_group=18-30", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	response := decodeResponse(t, w)
	assert.False(t, response.Success)
	assert.Contains(t, response.Error, "missing required field")
	assert.Contains(t, response.Error, "Housing Type")
}

func TestHandlePredict_UnknownCategory(t *testing.T) {
	router := predictRouter(t)

	w := httptest.NewRecorder()
	url := "/api/predict?age_group=18-30&housing_type=Igloo&dust_entry=Daily" +
		"&season=Winter&chest_heaviness=Yes&wheezing=Yes&eye_irritation=Often" +
		"&open_drains=Yes&foul_smell=Yes&construction=Yes"
	req := httptest.NewRequest("GET", url, nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	response := decodeResponse(t, w)
	assert.False(t, response.Success)
	assert.Contains(t, response.Error, "Igloo")
	assert.Contains(t, response.Error, "Housing Type")
}

func TestHandleFilters(t *testing.T) {
	router := predictRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/filters", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	require.True(t, response.Success)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, data, 10)

	wheezing, ok := data["Wheezing Sound"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"No", "Yes"}, wheezing)
}
