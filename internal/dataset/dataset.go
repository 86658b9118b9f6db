// Package dataset owns the survey schema: the canonical column set of the
// questionnaire export, the fixed feature order the model is trained on,
// and CSV loading.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ColumnNames lists all survey export columns in order. The questionnaire
// export carries the full question text as headers, so columns are mapped
// positionally to these canonical names.
var ColumnNames = []string{
	"Timestamp", "Age Group", "Gender", "Locality", "Years in Area",
	"Housing Type", "Occupation", "Dust Entry Frequency", "Nearby Hazards",
	"Worst Pollution Season", "Outdoor Avoidance", "Health Symptoms",
	"Morning Chest Heaviness", "Wheezing Sound", "Eye/Throat Irritation",
	"Doctor Visit (Breathing)", "Open Drains Nearby", "Foul Smell Daily",
	"Construction Pollution", "AQI Awareness", "First Action on Cough",
	"Disease or Normal", "Workshop Interest", "Other Concerns",
}

// FeatureFields is the canonical feature order. It is part of the model
// contract: feature vectors at training and inference time must follow
// exactly this order.
var FeatureFields = []string{
	"Age Group", "Housing Type", "Dust Entry Frequency",
	"Worst Pollution Season", "Morning Chest Heaviness",
	"Wheezing Sound", "Eye/Throat Irritation",
	"Open Drains Nearby", "Foul Smell Daily", "Construction Pollution",
}

const (
	// LabelField is the binary training outcome column.
	LabelField = "Doctor Visit (Breathing)"
	// PositiveLabel marks the minority ("at risk") class.
	PositiveLabel = "Yes"

	// MissingValue replaces blank feature cells at load time.
	MissingValue = "Unknown"
)

// Record is one respondent's answers, keyed by canonical column name.
type Record map[string]string

// Label reports the record's outcome label.
func (r Record) Label() string {
	return r[LabelField]
}

// Positive reports whether the record belongs to the positive class.
func (r Record) Positive() bool {
	return r.Label() == PositiveLabel
}

// LoadCSV reads a questionnaire export. The first row is treated as a
// header and skipped; remaining rows are mapped positionally onto
// ColumnNames. Blank feature cells are normalized to MissingValue.
func LoadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses questionnaire rows from r. Split out from LoadCSV so
// callers can feed in-memory exports.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset csv: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset has no data rows")
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < len(ColumnNames) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i+2, len(row), len(ColumnNames))
		}

		record := make(Record, len(ColumnNames))
		for j, name := range ColumnNames {
			record[name] = strings.TrimSpace(row[j])
		}

		// Blank answers in feature columns become an explicit category so
		// the encoder sees a consistent vocabulary.
		for _, field := range FeatureFields {
			if record[field] == "" {
				record[field] = MissingValue
			}
		}

		records = append(records, record)
	}

	return records, nil
}
