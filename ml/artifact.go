package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

// artifactFile is the persisted layout: one self-describing JSON document per
// target holding the fitted model, its schema and vocabularies, and the
// evaluation metrics behind its selection.
type artifactFile struct {
	Version   int             `json:"version"`
	Target    Target          `json:"target"`
	ModelType string          `json:"model_type"`
	Model     json.RawMessage `json:"model"`
	Schema    *Schema         `json:"schema"`
	Metrics   Metrics         `json:"metrics"`
}

// SaveArtifact writes a trained model to path.
func SaveArtifact(path string, tm *TrainedModel) error {
	if tm == nil || tm.Model == nil {
		return errNotFitted
	}
	modelPayload, err := json.Marshal(tm.Model)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	payload, err := json.Marshal(artifactFile{
		Version:   SchemaVersion,
		Target:    tm.Target,
		ModelType: tm.ModelType,
		Model:     modelPayload,
		Schema:    tm.Schema,
		Metrics:   tm.Metrics,
	})
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	return os.WriteFile(path, payload, 0o600)
}

// LoadArtifact reads a trained model from path and verifies the bundled
// schema against the current feature deriver. A schema mismatch or corrupt
// file is fatal for startup: the caller must refuse to serve.
func LoadArtifact(path string) (*TrainedModel, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var file artifactFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("unmarshal artifact %s: %w", path, err)
	}
	if file.Schema == nil {
		return nil, fmt.Errorf("artifact %s: %w: no schema bundled", path, ErrSchemaMismatch)
	}
	if err := file.Schema.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	file.Schema.buildIndex()

	var model Regressor
	switch file.ModelType {
	case ModelLinear:
		model = &LinearModel{}
	case ModelForest:
		model = &ForestModel{}
	case ModelGBT:
		model = &GBTModel{}
	default:
		return nil, fmt.Errorf("artifact %s: unsupported model type %q", path, file.ModelType)
	}
	if err := json.Unmarshal(file.Model, model); err != nil {
		return nil, fmt.Errorf("unmarshal %s model: %w", file.ModelType, err)
	}

	return &TrainedModel{
		Target:    file.Target,
		ModelType: file.ModelType,
		Model:     model,
		Schema:    file.Schema,
		Metrics:   file.Metrics,
	}, nil
}
