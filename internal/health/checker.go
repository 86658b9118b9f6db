package health

import (
	"context"
	"time"

	"github.com/airhealth/backend/internal/database"
	"github.com/airhealth/backend/internal/model"
	"github.com/sirupsen/logrus"
)

// HealthChecker manages health checks for all services
type HealthChecker struct {
	dbManager *database.Manager
	cache     *database.Cache
	artifact  *model.Artifact
	logger    *logrus.Logger
}

func NewHealthChecker(dbManager *database.Manager, artifact *model.Artifact, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		dbManager: dbManager,
		cache:     database.NewCache(dbManager.Redis, logger),
		artifact:  artifact,
		logger:    logger,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// CheckPostgreSQL checks PostgreSQL database health
func (h *HealthChecker) CheckPostgreSQL() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingDatabase()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("PostgreSQL health check failed")
	}

	return ServiceHealth{
		Name:         "postgresql",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckRedis checks Redis cache health
func (h *HealthChecker) CheckRedis() ServiceHealth {
	start := time.Now()
	err := h.dbManager.PingRedis()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).Error("Redis health check failed")
	}

	return ServiceHealth{
		Name:         "redis",
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckModel verifies the prediction model artifact is loaded and usable.
// The server refuses to start without one, but the check also guards
// against an artifact that loaded with an empty ensemble.
func (h *HealthChecker) CheckModel() ServiceHealth {
	status := "healthy"
	errorMsg := ""

	switch {
	case h.artifact == nil:
		status = "unhealthy"
		errorMsg = "model artifact not loaded"
	case h.artifact.Forest == nil || len(h.artifact.Forest.Trees) == 0:
		status = "unhealthy"
		errorMsg = "model artifact has no fitted trees"
	}

	if status != "healthy" {
		h.logger.WithField("error", errorMsg).Error("Model health check failed")
	}

	return ServiceHealth{
		Name:        "model",
		Status:      status,
		Error:       errorMsg,
		LastChecked: time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll() OverallHealth {
	services := []ServiceHealth{
		h.CheckPostgreSQL(),
		h.CheckRedis(),
		h.CheckModel(),
	}

	overallStatus := "healthy"
	for _, service := range services {
		if service.Status == "unhealthy" {
			overallStatus = "unhealthy"
			break
		}
		if service.Status == "degraded" && overallStatus == "healthy" {
			overallStatus = "degraded"
		}
	}

	return OverallHealth{
		Status:   overallStatus,
		Services: services,
		Uptime:   h.getUptime(),
	}
}

var startTime = time.Now()

func (h *HealthChecker) getUptime() string {
	return time.Since(startTime).String()
}

// PeriodicHealthCheck runs health checks periodically and caches the
// result so the health endpoint stays cheap.
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			overall := h.CheckAll()

			cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := h.cache.SetJSON(cacheCtx, "system:health", overall, 2*interval); err != nil {
				h.logger.WithError(err).Error("Failed to cache health status")
			}
			cancel()

			h.logger.WithField("status", overall.Status).Debug("Periodic health check completed")
		}
	}
}

// CheckCached returns the cached health snapshot if present.
func (h *HealthChecker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	var overall OverallHealth
	if err := h.cache.GetJSON(ctx, "system:health", &overall); err != nil {
		return nil, err
	}
	return &overall, nil
}
