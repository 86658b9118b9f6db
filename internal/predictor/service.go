// Package predictor is the online inference service: it encodes a raw
// respondent profile with the trained artifact's code tables, queries the
// forest, and applies risk tiering.
package predictor

import (
	"github.com/airhealth/backend/internal/encoder"
	"github.com/airhealth/backend/internal/model"
	"github.com/sirupsen/logrus"
)

// Prediction is the result of one inference call, echoing the raw inputs
// it was computed from.
type Prediction struct {
	Probability float64           `json:"probability"`
	RiskTier    RiskTier          `json:"risk_tier"`
	Inputs      map[string]string `json:"inputs"`
	ModelVer    string            `json:"model_version"`
}

// Service answers prediction requests against one immutable model
// artifact. The artifact is read-only after load, so concurrent Predict
// calls need no synchronization; every call's state is request-local.
type Service struct {
	artifact *model.Artifact
	logger   *logrus.Logger
}

// New builds a service around an explicitly owned artifact handle. The
// caller loads the artifact once at startup; there is no ambient global.
func New(artifact *model.Artifact, logger *logrus.Logger) *Service {
	return &Service{
		artifact: artifact,
		logger:   logger,
	}
}

// Artifact exposes the loaded model, e.g. for the filters endpoint and
// health reporting.
func (s *Service) Artifact() *model.Artifact { return s.artifact }

// Predict validates that every model field is present, encodes the inputs
// with the training-time code tables, and returns probability plus tier.
// Fails with encoder.MissingFieldError or encoder.UnknownCategoryError; no
// partial computation happens on bad input and no error is ever downgraded
// to a default prediction.
func (s *Service) Predict(inputs map[string]string) (*Prediction, error) {
	vector, err := encoder.Vectorize(inputs, s.artifact.CodeTables, s.artifact.FieldOrder)
	if err != nil {
		return nil, err
	}

	probability := s.artifact.Forest.PredictProbability(vector)
	tier := Tier(probability)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"probability": probability,
			"risk_tier":   tier,
			"model":       s.artifact.Version,
		}).Debug("Prediction computed")
	}

	echo := make(map[string]string, len(inputs))
	for field, value := range inputs {
		echo[field] = value
	}

	return &Prediction{
		Probability: probability,
		RiskTier:    tier,
		Inputs:      echo,
		ModelVer:    s.artifact.Version,
	}, nil
}
