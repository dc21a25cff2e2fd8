package forecast

import (
	"fmt"
	"math"
)

// Additive Holt-Winters triple exponential smoothing. With fewer than two
// full seasons of history the seasonal component is dropped and the model
// degrades to double (trend-only) smoothing.

type Options struct {
	Alpha        float64 // level smoothing
	Beta         float64 // trend smoothing
	Gamma        float64 // seasonal smoothing
	SeasonLength int
	Horizon      int
}

func DefaultOptions() Options {
	return Options{
		Alpha:        0.35,
		Beta:         0.1,
		Gamma:        0.2,
		SeasonLength: 12,
		Horizon:      12,
	}
}

// Result carries the forecast and in-sample fit quality.
type Result struct {
	Forecast []float64
	Fitted   []float64
	MAE      float64
	MAPE     float64
	Seasonal bool
}

// HoltWinters fits the series and extrapolates opts.Horizon steps.
func HoltWinters(series []float64, opts Options) (*Result, error) {
	if opts.Horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", opts.Horizon)
	}
	if opts.Alpha <= 0 || opts.Alpha >= 1 || opts.Beta < 0 || opts.Beta >= 1 || opts.Gamma < 0 || opts.Gamma >= 1 {
		return nil, fmt.Errorf("smoothing parameters must lie in (0,1)")
	}
	if len(series) < 2 {
		return nil, fmt.Errorf("need at least 2 observations, got %d", len(series))
	}

	m := opts.SeasonLength
	seasonal := m > 1 && len(series) >= 2*m

	if seasonal {
		return tripleSmooth(series, m, opts), nil
	}
	return doubleSmooth(series, opts), nil
}

func tripleSmooth(series []float64, m int, opts Options) *Result {
	// initial level and trend from the first two seasons
	var firstSeason, secondSeason float64
	for i := 0; i < m; i++ {
		firstSeason += series[i]
		secondSeason += series[m+i]
	}
	level := firstSeason / float64(m)
	trend := (secondSeason - firstSeason) / float64(m*m)

	// initial seasonal indices relative to the first-season mean
	season := make([]float64, m)
	for i := 0; i < m; i++ {
		season[i] = series[i] - level
	}

	res := &Result{Seasonal: true}
	fitted := make([]float64, len(series))

	for i, y := range series {
		si := i % m
		fitted[i] = level + trend + season[si]

		prevLevel := level
		level = opts.Alpha*(y-season[si]) + (1-opts.Alpha)*(level+trend)
		trend = opts.Beta*(level-prevLevel) + (1-opts.Beta)*trend
		season[si] = opts.Gamma*(y-level) + (1-opts.Gamma)*season[si]
	}

	res.Fitted = fitted
	res.MAE, res.MAPE = fitError(series, fitted)

	for h := 1; h <= opts.Horizon; h++ {
		si := (len(series) + h - 1) % m
		value := level + float64(h)*trend + season[si]
		res.Forecast = append(res.Forecast, clampNonNegative(value))
	}
	return res
}

func doubleSmooth(series []float64, opts Options) *Result {
	level := series[0]
	trend := series[1] - series[0]

	res := &Result{}
	fitted := make([]float64, len(series))

	for i, y := range series {
		fitted[i] = level + trend

		prevLevel := level
		level = opts.Alpha*y + (1-opts.Alpha)*(level+trend)
		trend = opts.Beta*(level-prevLevel) + (1-opts.Beta)*trend
	}

	res.Fitted = fitted
	res.MAE, res.MAPE = fitError(series, fitted)

	for h := 1; h <= opts.Horizon; h++ {
		res.Forecast = append(res.Forecast, clampNonNegative(level+float64(h)*trend))
	}
	return res
}

func fitError(actual, fitted []float64) (mae, mape float64) {
	n := 0
	for i := range actual {
		err := math.Abs(actual[i] - fitted[i])
		mae += err
		if actual[i] != 0 {
			mape += err / math.Abs(actual[i])
			n++
		}
	}
	mae /= float64(len(actual))
	if n > 0 {
		mape = mape / float64(n) * 100
	}
	return mae, mape
}

// counts cannot go negative
func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
