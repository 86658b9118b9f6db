package models

// PredictRequest binds the prediction query parameters. Fields are not
// marked required here: the inference service validates presence itself so
// a missing field is reported with its canonical survey name.
type PredictRequest struct {
	AgeGroup       string `form:"age_group"`
	HousingType    string `form:"housing_type"`
	DustEntry      string `form:"dust_entry"`
	Season         string `form:"season"`
	ChestHeaviness string `form:"chest_heaviness"`
	Wheezing       string `form:"wheezing"`
	EyeIrritation  string `form:"eye_irritation"`
	OpenDrains     string `form:"open_drains"`
	FoulSmell      string `form:"foul_smell"`
	Construction   string `form:"construction"`
}

// Inputs maps the query aliases onto canonical survey field names,
// omitting blanks so missing fields surface as such downstream.
func (r *PredictRequest) Inputs() map[string]string {
	inputs := make(map[string]string, 10)
	set := func(field, value string) {
		if value != "" {
			inputs[field] = value
		}
	}

	set("Age Group", r.AgeGroup)
	set("Housing Type", r.HousingType)
	set("Dust Entry Frequency", r.DustEntry)
	set("Worst Pollution Season", r.Season)
	set("Morning Chest Heaviness", r.ChestHeaviness)
	set("Wheezing Sound", r.Wheezing)
	set("Eye/Throat Irritation", r.EyeIrritation)
	set("Open Drains Nearby", r.OpenDrains)
	set("Foul Smell Daily", r.FoulSmell)
	set("Construction Pollution", r.Construction)

	return inputs
}

// ChartPoint is one name/value pair in a dashboard chart dataset.
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Stats are the dashboard KPI numbers.
type Stats struct {
	TotalResponses              int     `json:"total_responses"`
	HealthcareUtilization       float64 `json:"healthcare_utilization"`
	ConstructionPollutionBelief string  `json:"construction_pollution_belief"`
	AQIAwareness                float64 `json:"aqi_awareness"`
	WheezingPrevalence          float64 `json:"wheezing_prevalence"`
	DoctorVisitsYes             int     `json:"doctor_visits_yes"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
