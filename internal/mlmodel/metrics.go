package mlmodel

import "fmt"

// Evaluation holds classification quality measures for a labelled set.
type Evaluation struct {
	Accuracy  float64
	Confusion map[int]map[int]int // actual -> predicted -> count
	PerClass  map[int]ClassMetrics
}

type ClassMetrics struct {
	Precision float64
	Recall    float64
	Support   int
}

// Evaluate compares predictions against actual severities.
func Evaluate(actual, predicted []int, classes []int) (*Evaluation, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("length mismatch: %d actual vs %d predicted", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return nil, fmt.Errorf("nothing to evaluate")
	}

	eval := &Evaluation{
		Confusion: make(map[int]map[int]int),
		PerClass:  make(map[int]ClassMetrics),
	}
	for _, c := range classes {
		eval.Confusion[c] = make(map[int]int)
	}

	correct := 0
	for i := range actual {
		if _, ok := eval.Confusion[actual[i]]; !ok {
			eval.Confusion[actual[i]] = make(map[int]int)
		}
		eval.Confusion[actual[i]][predicted[i]]++
		if actual[i] == predicted[i] {
			correct++
		}
	}
	eval.Accuracy = float64(correct) / float64(len(actual))

	for _, c := range classes {
		var truePos, falsePos, support int
		for _, a := range classes {
			count := eval.Confusion[a][c]
			if a == c {
				truePos = count
			} else {
				falsePos += count
			}
		}
		for _, p := range classes {
			support += eval.Confusion[c][p]
		}

		metrics := ClassMetrics{Support: support}
		if truePos+falsePos > 0 {
			metrics.Precision = float64(truePos) / float64(truePos+falsePos)
		}
		if support > 0 {
			metrics.Recall = float64(truePos) / float64(support)
		}
		eval.PerClass[c] = metrics
	}

	return eval, nil
}
