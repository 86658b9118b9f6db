package repository

import (
	"github.com/airhealth/backend/internal/models"
	"gorm.io/gorm"
)

// SurveyResponseRepositoryImpl implements models.SurveyResponseRepository
type SurveyResponseRepositoryImpl struct {
	db *gorm.DB
}

func NewSurveyResponseRepository(db *gorm.DB) models.SurveyResponseRepository {
	return &SurveyResponseRepositoryImpl{db: db}
}

func (r *SurveyResponseRepositoryImpl) Create(response *models.SurveyResponse) error {
	return r.db.Create(response).Error
}

func (r *SurveyResponseRepositoryImpl) CreateBatch(responses []*models.SurveyResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return r.db.CreateInBatches(responses, 100).Error
}

func (r *SurveyResponseRepositoryImpl) GetAll() ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	err := r.db.Order("id").Find(&responses).Error
	return responses, err
}

func (r *SurveyResponseRepositoryImpl) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.SurveyResponse{}).Count(&count).Error
	return count, err
}

func (r *SurveyResponseRepositoryImpl) DistinctValues(column string) ([]string, error) {
	var values []string
	err := r.db.Model(&models.SurveyResponse{}).
		Distinct(column).
		Where(column + " <> ''").
		Order(column).
		Pluck(column, &values).Error
	return values, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	SurveyResponse models.SurveyResponseRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		SurveyResponse: NewSurveyResponseRepository(db),
	}
}
