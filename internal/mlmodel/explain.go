package mlmodel

import (
	"fmt"
	"math"
	"sort"
)

// Additive feature attribution for the linear model. For a logistic model
// the exact Shapley value of feature i relative to the training-mean
// baseline is w_i * (x_i - mean_i) in logit space; contributions plus the
// baseline logit reconstruct the prediction's logit exactly.

type Contribution struct {
	Feature string
	Value   float64 // standardised input value
	Phi     float64 // logit-space contribution
}

// Explanation attributes one prediction for one class.
type Explanation struct {
	Class         int
	BaselineLogit float64
	Logit         float64
	Probability   float64
	Contributions []Contribution
}

// Explain attributes a single standardised row for the given class. The row
// is already mean-centred by the scaler, so each feature's contribution is
// its weight times its standardised value.
func (m *Model) Explain(row []float64, class int) (*Explanation, error) {
	ci := -1
	for i, c := range m.Classes {
		if c == class {
			ci = i
		}
	}
	if ci < 0 {
		return nil, fmt.Errorf("model has no class %d", class)
	}
	if len(row) != len(m.FeatureNames) {
		return nil, fmt.Errorf("row has %d features, model expects %d", len(row), len(m.FeatureNames))
	}

	logit := m.logit(ci, row)
	exp := &Explanation{
		Class:         class,
		BaselineLogit: m.Baseline[ci],
		Logit:         logit,
		Probability:   sigmoid(logit),
	}

	for j, name := range m.FeatureNames {
		exp.Contributions = append(exp.Contributions, Contribution{
			Feature: name,
			Value:   row[j],
			Phi:     m.Weights[ci][j] * row[j],
		})
	}
	sort.Slice(exp.Contributions, func(i, j int) bool {
		return math.Abs(exp.Contributions[i].Phi) > math.Abs(exp.Contributions[j].Phi)
	})
	return exp, nil
}

// GlobalImportance averages |phi| per feature over a set of rows for one
// class, the usual global view of additive attributions.
func (m *Model) GlobalImportance(rows [][]float64, class int) ([]Contribution, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to attribute")
	}

	totals := make([]float64, len(m.FeatureNames))
	for _, row := range rows {
		exp, err := m.Explain(row, class)
		if err != nil {
			return nil, err
		}
		for _, c := range exp.Contributions {
			for j, name := range m.FeatureNames {
				if name == c.Feature {
					totals[j] += math.Abs(c.Phi)
				}
			}
		}
	}

	out := make([]Contribution, len(m.FeatureNames))
	for j, name := range m.FeatureNames {
		out[j] = Contribution{Feature: name, Phi: totals[j] / float64(len(rows))}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phi > out[j].Phi })
	return out, nil
}
