package sample

import (
	"testing"
	"time"

	"github.com/roadlab/stats19/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, opts Options) *Generator {
	t.Helper()
	g, err := New(opts)
	require.NoError(t, err)
	return g
}

func TestNewRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Start = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	opts.End = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := New(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precedes")

	opts = DefaultOptions()
	opts.Count = -1
	_, err = New(opts)
	require.Error(t, err)

	opts = DefaultOptions()
	opts.RadiusKm = 0
	_, err = New(opts)
	require.Error(t, err)
}

func TestGenerateSingleDayRange(t *testing.T) {
	opts := DefaultOptions()
	opts.Count = 20
	opts.Start = time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	opts.End = opts.Start

	for _, a := range mustNew(t, opts).Generate() {
		ts := a.Time()
		assert.Equal(t, 2023, ts.Year())
		assert.Equal(t, time.March, ts.Month())
		assert.Equal(t, 15, ts.Day())
	}
}

func TestGenerateCount(t *testing.T) {
	opts := DefaultOptions()
	opts.Count = 250

	accidents := mustNew(t, opts).Generate()
	require.Len(t, accidents, 250)

	seen := make(map[string]bool)
	for _, a := range accidents {
		assert.False(t, seen[a.AccidentIndex], "duplicate index %s", a.AccidentIndex)
		seen[a.AccidentIndex] = true
	}
}

func TestGenerateValidRecords(t *testing.T) {
	opts := DefaultOptions()
	opts.Count = 500

	for _, a := range mustNew(t, opts).Generate() {
		assert.Contains(t, []int{1, 2, 3}, a.Severity)
		assert.True(t, a.HasLocation)
		assert.GreaterOrEqual(t, a.NumVehicles, 1)
		assert.GreaterOrEqual(t, a.NumCasualties, 1)
		assert.Contains(t, []int{1, 2}, a.UrbanOrRural)

		ts := a.Time()
		assert.False(t, ts.Before(opts.Start))
		assert.False(t, ts.After(opts.End.Add(1)))

		// urban records keep urban speed limits
		if a.UrbanOrRural == 1 {
			assert.Contains(t, []int{20, 30, 40}, a.SpeedLimit)
		} else {
			assert.Contains(t, []int{40, 50, 60, 70}, a.SpeedLimit)
		}

		// daytime collisions are coded daylight
		if hour := ts.Hour(); hour >= 7 && hour <= 18 {
			assert.Equal(t, 1, a.LightConditions)
		} else {
			assert.True(t, models.IsDarkness(a.LightConditions))
		}
	}
}

func TestGenerateMostRecordsNearCentre(t *testing.T) {
	opts := DefaultOptions()
	opts.Count = 1000

	centre := models.Location{Lat: opts.CentreLat, Lon: opts.CentreLon}
	inGB, nearCentre := 0, 0
	for _, a := range mustNew(t, opts).Generate() {
		if a.Location.InGreatBritain() {
			inGB++
		}
		if a.Location.DistanceKm(centre) <= opts.RadiusKm*3 {
			nearCentre++
		}
	}
	assert.Greater(t, inGB, 950)
	assert.Greater(t, nearCentre, 700)
}

func TestGenerateSeverityProportions(t *testing.T) {
	opts := DefaultOptions()
	opts.Count = 5000

	counts := make(map[int]int)
	for _, a := range mustNew(t, opts).Generate() {
		counts[a.Severity]++
	}

	// slight dominates, fatal stays rare
	assert.Greater(t, counts[models.SeveritySlight], counts[models.SeveritySerious])
	assert.Greater(t, counts[models.SeveritySerious], counts[models.SeverityFatal])
	assert.Less(t, counts[models.SeverityFatal], 200)
	assert.Greater(t, counts[models.SeverityFatal], 10)
}

func TestGenerateDeterministicPerSeed(t *testing.T) {
	opts := DefaultOptions()
	opts.Count = 50

	first := mustNew(t, opts).Generate()
	second := mustNew(t, opts).Generate()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].AccidentIndex[:7], second[i].AccidentIndex[:7])
		assert.Equal(t, first[i].Timestamp, second[i].Timestamp)
		assert.Equal(t, first[i].Severity, second[i].Severity)
		assert.Equal(t, first[i].Location, second[i].Location)
	}

	opts.Seed = 99
	third := mustNew(t, opts).Generate()
	different := false
	for i := range first {
		if first[i].Timestamp != third[i].Timestamp {
			different = true
			break
		}
	}
	assert.True(t, different, "changing the seed should change the stream")
}
