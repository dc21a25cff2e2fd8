package analysis

import (
	"testing"
	"time"

	"github.com/roadlab/stats19/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() []*models.Accident {
	ts := time.Date(2023, 6, 15, 9, 0, 0, 0, time.UTC).Unix()
	return []*models.Accident{
		{AccidentIndex: "A1", Timestamp: ts, Severity: 1, RoadType: 6, NumCasualties: 2, SpeedLimit: 60, HasLocation: true},
		{AccidentIndex: "A2", Timestamp: ts, Severity: 2, RoadType: 6, NumCasualties: 1, SpeedLimit: 30},
		{AccidentIndex: "A3", Timestamp: ts, Severity: 3, RoadType: 6, NumCasualties: 1, SpeedLimit: 30, HasLocation: true},
		{AccidentIndex: "A4", Timestamp: ts, Severity: 3, RoadType: 3, NumCasualties: 3, SpeedLimit: 70},
		{AccidentIndex: "A5", Timestamp: ts, Severity: 3, RoadType: 3, NumCasualties: models.MissingCode, SpeedLimit: 70},
	}
}

func TestGroupAndAggregateCount(t *testing.T) {
	groups, err := GroupAndAggregate(fixture(), "road_type", "", "count", "count", "value_desc", 0)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "single_carriageway", groups[0].Key)
	assert.Equal(t, 3, groups[0].Count)
	assert.Equal(t, 3.0, groups[0].Value)
	assert.Equal(t, "dual_carriageway", groups[1].Key)
	assert.Equal(t, 2, groups[1].Count)
}

func TestGroupAndAggregateSumAndAvg(t *testing.T) {
	groups, err := GroupAndAggregate(fixture(), "road_type", "", "casualties", "sum", "key_asc", 0)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	// missing casualty codes contribute zero
	assert.Equal(t, "dual_carriageway", groups[0].Key)
	assert.Equal(t, 3.0, groups[0].Value)
	assert.Equal(t, 4.0, groups[1].Value)

	groups, err = GroupAndAggregate(fixture(), "severity", "", "ksi", "avg", "key_asc", 0)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "fatal", groups[0].Key)
	assert.Equal(t, 1.0, groups[0].Value)
	assert.Equal(t, "slight", groups[2].Key)
	assert.Equal(t, 0.0, groups[2].Value)
}

func TestGroupAndAggregateMinMaxAndLimit(t *testing.T) {
	groups, err := GroupAndAggregate(fixture(), "speed_limit", "", "casualties", "max", "value_desc", 1)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "70", groups[0].Key)
	assert.Equal(t, 3.0, groups[0].Value)

	groups, err = GroupAndAggregate(fixture(), "road_type", "", "casualties", "min", "key_asc", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, groups[0].Value)
	assert.Equal(t, 1.0, groups[1].Value)
}

func TestGroupAndAggregateTwoDimensions(t *testing.T) {
	groups, err := GroupAndAggregate(fixture(), "road_type", "severity", "count", "count", "key_asc", 0)
	require.NoError(t, err)
	require.Len(t, groups, 4)

	assert.Equal(t, "dual_carriageway/slight", groups[0].Key)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "single_carriageway/fatal", groups[1].Key)
	assert.Equal(t, 1, groups[1].Count)
	assert.Equal(t, "single_carriageway/serious", groups[2].Key)
	assert.Equal(t, "single_carriageway/slight", groups[3].Key)

	// composite keys aggregate measures per pair
	groups, err = GroupAndAggregate(fixture(), "speed_limit", "severity", "casualties", "sum", "key_asc", 0)
	require.NoError(t, err)
	require.Len(t, groups, 4)
	assert.Equal(t, "30/serious", groups[0].Key)
	assert.Equal(t, 1.0, groups[0].Value)
	assert.Equal(t, "70/slight", groups[3].Key)
	assert.Equal(t, 3.0, groups[3].Value)
}

func TestGroupAndAggregateErrors(t *testing.T) {
	_, err := GroupAndAggregate(fixture(), "nope", "", "count", "count", "", 0)
	assert.Error(t, err)
	_, err = GroupAndAggregate(fixture(), "severity", "nope", "count", "count", "", 0)
	assert.Error(t, err)
	_, err = GroupAndAggregate(fixture(), "severity", "", "nope", "count", "", 0)
	assert.Error(t, err)
	_, err = GroupAndAggregate(fixture(), "severity", "", "count", "median", "", 0)
	assert.Error(t, err)
}

func TestCrossTab(t *testing.T) {
	rows, err := CrossTab(fixture(), "road_type")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// sorted by total descending
	assert.Equal(t, "single_carriageway", rows[0].Key)
	assert.Equal(t, 1, rows[0].Fatal)
	assert.Equal(t, 1, rows[0].Serious)
	assert.Equal(t, 1, rows[0].Slight)
	assert.Equal(t, 3, rows[0].Total)
	assert.InDelta(t, 2.0/3.0, rows[0].KSIShare(), 1e-9)

	assert.Equal(t, "dual_carriageway", rows[1].Key)
	assert.Zero(t, rows[1].KSIShare())
}

func TestSummarise(t *testing.T) {
	s := Summarise(fixture())

	assert.Equal(t, 5, s.Records)
	assert.Equal(t, 2, s.WithLocation)

	var casualties NumericSummary
	for _, n := range s.Numeric {
		if n.Name == "number_of_casualties" {
			casualties = n
		}
	}
	assert.Equal(t, 4, casualties.Count)
	assert.Equal(t, 1, casualties.Missing)
	assert.Equal(t, 1.0, casualties.Min)
	assert.Equal(t, 3.0, casualties.Max)
	assert.InDelta(t, 1.75, casualties.Mean, 1e-9)

	var severity CategoricalSummary
	for _, c := range s.Categorical {
		if c.Name == "severity" {
			severity = c
		}
	}
	assert.Equal(t, 3, severity.Cardinality)
	require.NotEmpty(t, severity.Top)
	assert.Equal(t, "slight", severity.Top[0].Value)
	assert.Equal(t, 3, severity.Top[0].Count)
}

func TestSummariseEmpty(t *testing.T) {
	s := Summarise(nil)
	assert.Zero(t, s.Records)
	for _, n := range s.Numeric {
		assert.Zero(t, n.Count)
		assert.Zero(t, n.Min)
		assert.Zero(t, n.Max)
	}
}
