// backend/internal/api/handlers/dashboard.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/airhealth/backend/internal/analytics"
	"github.com/airhealth/backend/internal/aqi"
	"github.com/airhealth/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	analytics *analytics.Service
	aqi       *aqi.Fetcher
	logger    *logrus.Logger
}

func NewDashboardHandler(analyticsService *analytics.Service, aqiFetcher *aqi.Fetcher, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		analytics: analyticsService,
		aqi:       aqiFetcher,
		logger:    logger,
	}
}

// HandleStats serves the KPI block.
func (h *DashboardHandler) HandleStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.analytics.Stats(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute dashboard stats")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Stats retrieved", stats)
}

// HandleChart serves one chart dataset by name.
func (h *DashboardHandler) HandleChart(c *gin.Context) {
	name := c.Param("chart")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	points, err := h.analytics.Chart(ctx, name)
	if err != nil {
		if errors.Is(err, analytics.ErrUnknownChart) {
			utils.ErrorResponse(c, http.StatusNotFound, "Unknown chart", err)
			return
		}

		h.logger.WithError(err).WithField("chart", name).Error("Failed to compute chart")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to compute chart", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Chart retrieved", points)
}

// HandleAQI serves the latest live AQI reading for the configured city.
func (h *DashboardHandler) HandleAQI(c *gin.Context) {
	if h.aqi == nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "AQI feed not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	reading, err := h.aqi.Current(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch AQI reading")
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to fetch AQI reading", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "AQI retrieved", reading)
}
