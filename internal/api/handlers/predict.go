// backend/internal/api/handlers/predict.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/airhealth/backend/internal/encoder"
	"github.com/airhealth/backend/internal/models"
	"github.com/airhealth/backend/internal/predictor"
	"github.com/airhealth/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PredictHandler struct {
	service *predictor.Service
	logger  *logrus.Logger
}

func NewPredictHandler(service *predictor.Service, logger *logrus.Logger) *PredictHandler {
	return &PredictHandler{
		service: service,
		logger:  logger,
	}
}

// HandlePredict runs the respiratory risk prediction for a respondent
// profile passed as query parameters.
func (h *PredictHandler) HandlePredict(c *gin.Context) {
	startTime := time.Now()

	var req models.PredictRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	prediction, err := h.service.Predict(req.Inputs())
	if err != nil {
		var missing *encoder.MissingFieldError
		if errors.As(err, &missing) {
			utils.ErrorResponse(c, http.StatusBadRequest, "Missing required field", err)
			return
		}

		var unknown *encoder.UnknownCategoryError
		if errors.As(err, &unknown) {
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, "Unknown category value", err)
			return
		}

		h.logger.WithError(err).Error("Prediction failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Prediction failed", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"probability":   prediction.Probability,
		"risk_tier":     prediction.RiskTier,
		"response_time": time.Since(startTime).Milliseconds(),
	}).Info("Prediction completed")

	utils.SuccessResponse(c, http.StatusOK, "Prediction completed", prediction)
}

// HandleFilters returns the values each prediction field accepts, sourced
// from the trained model's code tables so the UI can only offer inputs the
// model can encode.
func (h *PredictHandler) HandleFilters(c *gin.Context) {
	artifact := h.service.Artifact()

	filters := make(map[string][]string, len(artifact.FieldOrder))
	for _, field := range artifact.FieldOrder {
		filters[field] = artifact.CodeTables[field].Values()
	}

	utils.SuccessResponse(c, http.StatusOK, "Filters retrieved", filters)
}
