package forecast

import (
	"testing"
	"time"

	"github.com/roadlab/stats19/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accidentIn(year int, month time.Month) *models.Accident {
	return &models.Accident{
		AccidentIndex: "F1",
		Severity:      models.SeveritySlight,
		Timestamp:     time.Date(year, month, 15, 12, 0, 0, 0, time.UTC).Unix(),
	}
}

func TestMonthlyCountsZeroFillsGaps(t *testing.T) {
	accidents := []*models.Accident{
		accidentIn(2023, time.January),
		accidentIn(2023, time.January),
		accidentIn(2023, time.April),
	}

	series, err := MonthlyCounts(accidents)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), series.Start)
	require.Equal(t, 4, series.Len())
	assert.Equal(t, []float64{2, 0, 0, 1}, series.Counts)
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), series.Month(3))
}

func TestMonthlyCountsEmpty(t *testing.T) {
	_, err := MonthlyCounts(nil)
	assert.Error(t, err)
}

func TestHoltWintersSeasonalFit(t *testing.T) {
	// a pure repeating yearly pattern over three years
	pattern := []float64{100, 90, 110, 120, 130, 140, 150, 145, 125, 115, 105, 95}
	var series []float64
	for i := 0; i < 3; i++ {
		series = append(series, pattern...)
	}

	res, err := HoltWinters(series, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Seasonal)
	require.Len(t, res.Forecast, 12)
	require.Len(t, res.Fitted, len(series))

	// a noiseless seasonal signal forecasts close to the pattern
	for i, want := range pattern {
		assert.InDelta(t, want, res.Forecast[i], 10, "month %d", i)
	}
	assert.Less(t, res.MAPE, 10.0)
}

func TestHoltWintersTrendOnlyFallback(t *testing.T) {
	// 8 months of history cannot support a 12-month season
	series := []float64{10, 12, 14, 16, 18, 20, 22, 24}

	res, err := HoltWinters(series, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.Seasonal)
	require.Len(t, res.Forecast, 12)

	// a clean linear trend keeps climbing
	assert.Greater(t, res.Forecast[0], 24.0)
	for i := 1; i < len(res.Forecast); i++ {
		assert.Greater(t, res.Forecast[i], res.Forecast[i-1])
	}
}

func TestHoltWintersClampsNegativeForecasts(t *testing.T) {
	series := []float64{20, 15, 10, 5, 2, 1}

	res, err := HoltWinters(series, DefaultOptions())
	require.NoError(t, err)
	for _, v := range res.Forecast {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestHoltWintersHorizon(t *testing.T) {
	opts := DefaultOptions()
	opts.Horizon = 3

	res, err := HoltWinters([]float64{5, 6, 7, 8}, opts)
	require.NoError(t, err)
	assert.Len(t, res.Forecast, 3)
}

func TestHoltWintersValidation(t *testing.T) {
	opts := DefaultOptions()

	_, err := HoltWinters([]float64{1}, opts)
	assert.Error(t, err)

	opts.Horizon = 0
	_, err = HoltWinters([]float64{1, 2, 3}, opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Alpha = 1.5
	_, err = HoltWinters([]float64{1, 2, 3}, opts)
	assert.Error(t, err)
}
