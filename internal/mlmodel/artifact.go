package mlmodel

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes the model artifact as JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model to %s: %w", path, err)
	}
	return nil
}

// Load reads a model artifact and validates its shape.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model from %s: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}

	if len(m.Classes) == 0 || len(m.Weights) != len(m.Classes) || len(m.Biases) != len(m.Classes) {
		return nil, fmt.Errorf("model %s: class/weight shape mismatch", path)
	}
	for _, w := range m.Weights {
		if len(w) != len(m.FeatureNames) {
			return nil, fmt.Errorf("model %s: weight vector length %d does not match %d features", path, len(w), len(m.FeatureNames))
		}
	}
	if m.Scaler == nil || len(m.Scaler.Means) != len(m.FeatureNames) {
		return nil, fmt.Errorf("model %s: missing or mismatched scaler", path)
	}
	return &m, nil
}
