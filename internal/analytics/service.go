// Package analytics precomputes the dashboard's descriptive statistics
// from the stored survey responses. Results are served cache-aside through
// redis with a short TTL; the underlying data only changes when a seeding
// run ingests a new export.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/airhealth/backend/internal/database"
	"github.com/airhealth/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrUnknownChart reports a chart name the dashboard does not serve.
var ErrUnknownChart = errors.New("unknown chart")

const cacheTTL = 5 * time.Minute

type Service struct {
	repo   models.SurveyResponseRepository
	cache  *database.Cache
	logger *logrus.Logger
}

func NewService(repo models.SurveyResponseRepository, cache *database.Cache, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ChartNames lists the chart datasets the dashboard can request.
func ChartNames() []string {
	return []string{
		"doctor-visits", "season", "housing", "symptoms", "dust-entry",
		"age-distribution", "gender", "eye-irritation", "chest-heaviness",
	}
}

// Stats computes the dashboard KPI block.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	if s.cache != nil {
		var cached models.Stats
		if err := s.cache.GetCachedStats(ctx, &cached); err == nil {
			s.logger.Debug("Dashboard stats served from cache")
			return &cached, nil
		}
	}

	responses, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load survey responses: %w", err)
	}
	if len(responses) == 0 {
		return &models.Stats{}, nil
	}

	total := len(responses)
	doctorYes := 0
	wheezingYes := 0
	aqiNotAware := 0
	beliefs := make(map[string]int)

	for _, r := range responses {
		if r.DoctorVisitBreathing == "Yes" {
			doctorYes++
		}
		if r.WheezingSound == "Yes" {
			wheezingYes++
		}
		if strings.Contains(strings.ToLower(r.AQIAwareness), "no") {
			aqiNotAware++
		}
		if r.ConstructionPollution != "" {
			beliefs[r.ConstructionPollution]++
		}
	}

	stats := &models.Stats{
		TotalResponses:              total,
		HealthcareUtilization:       round1(float64(doctorYes) / float64(total) * 100),
		ConstructionPollutionBelief: topKey(beliefs),
		AQIAwareness:                round1(float64(total-aqiNotAware) / float64(total) * 100),
		WheezingPrevalence:          round1(float64(wheezingYes) / float64(total) * 100),
		DoctorVisitsYes:             doctorYes,
	}

	if s.cache != nil {
		if err := s.cache.CacheStats(ctx, stats, cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache dashboard stats")
		}
	}

	return stats, nil
}

// Chart computes one chart dataset by name.
func (s *Service) Chart(ctx context.Context, name string) ([]models.ChartPoint, error) {
	if s.cache != nil {
		var cached []models.ChartPoint
		if err := s.cache.GetCachedChart(ctx, name, &cached); err == nil {
			s.logger.WithField("chart", name).Debug("Chart served from cache")
			return cached, nil
		}
	}

	responses, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load survey responses: %w", err)
	}

	var points []models.ChartPoint
	switch name {
	case "doctor-visits":
		points = doctorVisitsByAge(responses)
	case "season":
		points = valueCounts(responses, func(r models.SurveyResponse) string { return r.WorstPollutionSeason })
	case "housing":
		points = valueCounts(responses, func(r models.SurveyResponse) string { return r.HousingType })
	case "symptoms":
		points = symptomBreakdown(responses)
	case "dust-entry":
		points = valueCounts(responses, func(r models.SurveyResponse) string { return r.DustEntryFrequency })
	case "age-distribution":
		points = valueCounts(responses, func(r models.SurveyResponse) string { return r.AgeGroup })
	case "gender":
		points = valueCounts(responses, func(r models.SurveyResponse) string { return r.Gender })
	case "eye-irritation":
		points = valueCounts(responses, func(r models.SurveyResponse) string { return r.EyeThroatIrritation })
	case "chest-heaviness":
		points = valueCounts(responses, func(r models.SurveyResponse) string { return r.MorningChestHeaviness })
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}

	if s.cache != nil {
		if err := s.cache.CacheChart(ctx, name, points, cacheTTL); err != nil {
			s.logger.WithError(err).WithField("chart", name).Warn("Failed to cache chart")
		}
	}

	return points, nil
}

// doctorVisitsByAge counts "Yes" doctor visits per age group, ordered by
// age group name.
func doctorVisitsByAge(responses []models.SurveyResponse) []models.ChartPoint {
	counts := make(map[string]int)
	for _, r := range responses {
		if r.AgeGroup == "" {
			continue
		}
		if _, ok := counts[r.AgeGroup]; !ok {
			counts[r.AgeGroup] = 0
		}
		if r.DoctorVisitBreathing == "Yes" {
			counts[r.AgeGroup]++
		}
	}

	points := make([]models.ChartPoint, 0, len(counts))
	for name, value := range counts {
		points = append(points, models.ChartPoint{Name: name, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Name < points[j].Name })
	return points
}

// symptomBreakdown explodes the multi-select symptoms answer before
// counting.
func symptomBreakdown(responses []models.SurveyResponse) []models.ChartPoint {
	counts := make(map[string]int)
	for _, r := range responses {
		if r.HealthSymptoms == "" {
			continue
		}
		for _, symptom := range strings.Split(r.HealthSymptoms, ",") {
			symptom = strings.TrimSpace(symptom)
			if symptom != "" {
				counts[symptom]++
			}
		}
	}
	return sortedCounts(counts)
}

func valueCounts(responses []models.SurveyResponse, pick func(models.SurveyResponse) string) []models.ChartPoint {
	counts := make(map[string]int)
	for _, r := range responses {
		if v := pick(r); v != "" {
			counts[v]++
		}
	}
	return sortedCounts(counts)
}

// sortedCounts orders by count descending, name ascending on ties, so
// chart output is stable across requests.
func sortedCounts(counts map[string]int) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(counts))
	for name, value := range counts {
		points = append(points, models.ChartPoint{Name: name, Value: value})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Name < points[j].Name
	})
	return points
}

func topKey(counts map[string]int) string {
	top, best := "", -1
	for name, value := range counts {
		if value > best || (value == best && name < top) {
			top, best = name, value
		}
	}
	return top
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
