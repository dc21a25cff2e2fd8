package mlmodel

import (
	"fmt"
	"math"

	"github.com/roadlab/stats19/internal/features"
)

// One-vs-rest logistic regression over the standardised feature matrix.
// Batch gradient descent with L2 regularisation; fully deterministic since
// weights start at zero and the data order is fixed by the caller.

// Classes the severity model distinguishes, in artifact order.
var SeverityClasses = []int{1, 2, 3}

type TrainOptions struct {
	Epochs       int
	LearningRate float64
	L2Lambda     float64
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Epochs:       200,
		LearningRate: 0.1,
		L2Lambda:     0.001,
	}
}

// Model is a trained one-vs-rest severity classifier.
type Model struct {
	FeatureNames []string         `json:"featureNames"`
	Classes      []int            `json:"classes"`
	Weights      [][]float64      `json:"weights"` // per class, len(FeatureNames)
	Biases       []float64        `json:"biases"`
	Scaler       *features.Scaler `json:"scaler"`
	TrainRows    int              `json:"trainRows"`
	Baseline     []float64        `json:"baseline"` // per-class mean logit over training data
}

// Train fits one binary logistic model per severity class on an already
// standardised matrix. The scaler is stored in the artifact so prediction
// inputs can be standardised the same way.
func Train(m *features.Matrix, scaler *features.Scaler, opts TrainOptions) (*Model, error) {
	if len(m.Rows) == 0 {
		return nil, fmt.Errorf("empty training matrix")
	}
	if opts.Epochs <= 0 || opts.LearningRate <= 0 {
		return nil, fmt.Errorf("epochs and learning rate must be positive")
	}

	model := &Model{
		FeatureNames: append([]string(nil), m.Names...),
		Classes:      append([]int(nil), SeverityClasses...),
		Scaler:       scaler,
		TrainRows:    len(m.Rows),
	}

	for _, class := range model.Classes {
		w, b := trainBinary(m, class, opts)
		model.Weights = append(model.Weights, w)
		model.Biases = append(model.Biases, b)
	}

	// record the mean logit per class as the explanation baseline
	model.Baseline = make([]float64, len(model.Classes))
	for ci := range model.Classes {
		var total float64
		for _, row := range m.Rows {
			total += model.logit(ci, row)
		}
		model.Baseline[ci] = total / float64(len(m.Rows))
	}

	return model, nil
}

func trainBinary(m *features.Matrix, class int, opts TrainOptions) ([]float64, float64) {
	dims := len(m.Names)
	n := float64(len(m.Rows))
	weights := make([]float64, dims)
	bias := 0.0

	targets := make([]float64, len(m.Rows))
	for i, severity := range m.Severity {
		if severity == class {
			targets[i] = 1
		}
	}

	gradW := make([]float64, dims)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range m.Rows {
			p := sigmoid(dot(weights, row) + bias)
			residual := p - targets[i]
			for j, x := range row {
				gradW[j] += residual * x
			}
			gradB += residual
		}

		for j := range weights {
			weights[j] -= opts.LearningRate * (gradW[j]/n + opts.L2Lambda*weights[j])
		}
		bias -= opts.LearningRate * gradB / n
	}

	return weights, bias
}

// Predict returns the most probable class and per-class probabilities for a
// single standardised feature row.
func (m *Model) Predict(row []float64) (int, []float64, error) {
	if len(row) != len(m.FeatureNames) {
		return 0, nil, fmt.Errorf("row has %d features, model expects %d", len(row), len(m.FeatureNames))
	}

	probs := make([]float64, len(m.Classes))
	best := 0
	for ci := range m.Classes {
		probs[ci] = sigmoid(m.logit(ci, row))
		if probs[ci] > probs[best] {
			best = ci
		}
	}
	return m.Classes[best], probs, nil
}

// PredictMatrix classifies every row of a standardised matrix.
func (m *Model) PredictMatrix(matrix *features.Matrix) ([]int, error) {
	if err := features.CheckLayout(matrix, m.FeatureNames); err != nil {
		return nil, fmt.Errorf("feature layout mismatch: %w", err)
	}
	predictions := make([]int, len(matrix.Rows))
	for i, row := range matrix.Rows {
		class, _, err := m.Predict(row)
		if err != nil {
			return nil, err
		}
		predictions[i] = class
	}
	return predictions, nil
}

func (m *Model) logit(classIndex int, row []float64) float64 {
	return dot(m.Weights[classIndex], row) + m.Biases[classIndex]
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var total float64
	for i := range a {
		total += a[i] * b[i]
	}
	return total
}
