package models

// GORM models

import (
	"fmt"
	"time"

	"github.com/airhealth/backend/internal/dataset"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SurveyResponse is one questionnaire submission. Column names follow the
// canonical dataset schema; SubmittedAt keeps the form's own timestamp as
// raw text since exports are not consistently formatted.
type SurveyResponse struct {
	BaseModel
	SubmittedAt           string `json:"submitted_at"`
	AgeGroup              string `json:"age_group" gorm:"not null;index"`
	Gender                string `json:"gender"`
	Locality              string `json:"locality"`
	YearsInArea           string `json:"years_in_area"`
	HousingType           string `json:"housing_type" gorm:"not null"`
	Occupation            string `json:"occupation"`
	DustEntryFrequency    string `json:"dust_entry_frequency" gorm:"not null"`
	NearbyHazards         string `json:"nearby_hazards"`
	WorstPollutionSeason  string `json:"worst_pollution_season" gorm:"not null"`
	OutdoorAvoidance      string `json:"outdoor_avoidance"`
	HealthSymptoms        string `json:"health_symptoms"`
	MorningChestHeaviness string `json:"morning_chest_heaviness" gorm:"not null"`
	WheezingSound         string `json:"wheezing_sound" gorm:"not null"`
	EyeThroatIrritation   string `json:"eye_throat_irritation" gorm:"not null"`
	DoctorVisitBreathing  string `json:"doctor_visit_breathing" gorm:"index"`
	OpenDrainsNearby      string `json:"open_drains_nearby" gorm:"not null"`
	FoulSmellDaily        string `json:"foul_smell_daily" gorm:"not null"`
	ConstructionPollution string `json:"construction_pollution" gorm:"not null"`
	AQIAwareness          string `json:"aqi_awareness"`
	FirstActionOnCough    string `json:"first_action_on_cough"`
	DiseaseOrNormal       string `json:"disease_or_normal"`
	WorkshopInterest      string `json:"workshop_interest"`
	OtherConcerns         string `json:"other_concerns"`
}

func (SurveyResponse) TableName() string { return "survey_responses" }

// FromRecord maps a dataset record onto the storage model.
func FromRecord(r dataset.Record) *SurveyResponse {
	return &SurveyResponse{
		SubmittedAt:           r["Timestamp"],
		AgeGroup:              r["Age Group"],
		Gender:                r["Gender"],
		Locality:              r["Locality"],
		YearsInArea:           r["Years in Area"],
		HousingType:           r["Housing Type"],
		Occupation:            r["Occupation"],
		DustEntryFrequency:    r["Dust Entry Frequency"],
		NearbyHazards:         r["Nearby Hazards"],
		WorstPollutionSeason:  r["Worst Pollution Season"],
		OutdoorAvoidance:      r["Outdoor Avoidance"],
		HealthSymptoms:        r["Health Symptoms"],
		MorningChestHeaviness: r["Morning Chest Heaviness"],
		WheezingSound:         r["Wheezing Sound"],
		EyeThroatIrritation:   r["Eye/Throat Irritation"],
		DoctorVisitBreathing:  r["Doctor Visit (Breathing)"],
		OpenDrainsNearby:      r["Open Drains Nearby"],
		FoulSmellDaily:        r["Foul Smell Daily"],
		ConstructionPollution: r["Construction Pollution"],
		AQIAwareness:          r["AQI Awareness"],
		FirstActionOnCough:    r["First Action on Cough"],
		DiseaseOrNormal:       r["Disease or Normal"],
		WorkshopInterest:      r["Workshop Interest"],
		OtherConcerns:         r["Other Concerns"],
	}
}

// Record maps the storage model back to the dataset schema, for training
// runs that read from the database instead of a CSV export.
func (sr *SurveyResponse) Record() dataset.Record {
	return dataset.Record{
		"Timestamp":                sr.SubmittedAt,
		"Age Group":                sr.AgeGroup,
		"Gender":                   sr.Gender,
		"Locality":                 sr.Locality,
		"Years in Area":            sr.YearsInArea,
		"Housing Type":             sr.HousingType,
		"Occupation":               sr.Occupation,
		"Dust Entry Frequency":     sr.DustEntryFrequency,
		"Nearby Hazards":           sr.NearbyHazards,
		"Worst Pollution Season":   sr.WorstPollutionSeason,
		"Outdoor Avoidance":        sr.OutdoorAvoidance,
		"Health Symptoms":          sr.HealthSymptoms,
		"Morning Chest Heaviness":  sr.MorningChestHeaviness,
		"Wheezing Sound":           sr.WheezingSound,
		"Eye/Throat Irritation":    sr.EyeThroatIrritation,
		"Doctor Visit (Breathing)": sr.DoctorVisitBreathing,
		"Open Drains Nearby":       sr.OpenDrainsNearby,
		"Foul Smell Daily":         sr.FoulSmellDaily,
		"Construction Pollution":   sr.ConstructionPollution,
		"AQI Awareness":            sr.AQIAwareness,
		"First Action on Cough":    sr.FirstActionOnCough,
		"Disease or Normal":        sr.DiseaseOrNormal,
		"Workshop Interest":        sr.WorkshopInterest,
		"Other Concerns":           sr.OtherConcerns,
	}
}

// Validate enforces the fields the prediction model depends on.
func (sr *SurveyResponse) Validate() error {
	required := map[string]string{
		"age_group":              sr.AgeGroup,
		"housing_type":           sr.HousingType,
		"dust_entry_frequency":   sr.DustEntryFrequency,
		"worst_pollution_season": sr.WorstPollutionSeason,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

// GORM hooks
func (sr *SurveyResponse) BeforeCreate(tx *gorm.DB) error {
	return sr.Validate()
}

// SurveyResponseRepository is the storage interface the services depend
// on, so analytics and training can be tested without a database.
type SurveyResponseRepository interface {
	Create(response *SurveyResponse) error
	CreateBatch(responses []*SurveyResponse) error
	GetAll() ([]SurveyResponse, error)
	Count() (int64, error)
	DistinctValues(column string) ([]string, error)
}
