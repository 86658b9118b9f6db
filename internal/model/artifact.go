// Package model defines the trained model artifact: the fitted forest plus
// the code tables and field order it was trained with. The artifact is the
// only contract between the offline training pipeline and the online
// inference service, and is immutable once written.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/airhealth/backend/internal/encoder"
	"github.com/airhealth/backend/internal/forest"
)

// ErrArtifactNotFound reports a missing artifact file.
var ErrArtifactNotFound = errors.New("model artifact not found")

// ArtifactCorruptError reports an artifact that cannot be deserialized or
// is missing required sub-parts.
type ArtifactCorruptError struct {
	Reason string
	Err    error
}

func (e *ArtifactCorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model artifact corrupt: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("model artifact corrupt: %s", e.Reason)
}

func (e *ArtifactCorruptError) Unwrap() error { return e.Err }

// Artifact is a fitted model with everything inference needs. Versioned by
// the training run that produced it; hyperparameters travel inside the
// forest for reproducibility auditing.
type Artifact struct {
	Version    string                       `json:"version"`
	TrainedAt  time.Time                    `json:"trained_at"`
	FieldOrder []string                     `json:"field_order"`
	CodeTables map[string]encoder.CodeTable `json:"code_tables"`
	Forest     *forest.Forest               `json:"forest"`
}

// Validate checks that every sub-part inference depends on is present.
func (a *Artifact) Validate() error {
	if a.Forest == nil || len(a.Forest.Trees) == 0 {
		return &ArtifactCorruptError{Reason: "missing fitted classifier"}
	}
	if len(a.FieldOrder) == 0 {
		return &ArtifactCorruptError{Reason: "missing field order"}
	}
	for _, field := range a.FieldOrder {
		if len(a.CodeTables[field]) == 0 {
			return &ArtifactCorruptError{Reason: fmt.Sprintf("missing code table for field %q", field)}
		}
	}
	return nil
}

// Save writes the artifact atomically: a temp file in the target directory
// is published via rename only on full success, so a failed write never
// leaves a partial artifact behind.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model artifact: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to publish artifact: %w", err)
	}
	return nil
}

// Load reads and validates a persisted artifact.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, &ArtifactCorruptError{Reason: "undecodable", Err: err}
	}

	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return &artifact, nil
}
