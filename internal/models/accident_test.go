package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHeader() []string {
	return []string{
		"Accident_Index", "Date", "Time", "Longitude", "Latitude",
		"Accident_Severity", "Number_of_Vehicles", "Number_of_Casualties",
		"Road_Type", "Speed_limit", "Light_Conditions",
		"Road_Surface_Conditions", "Urban_or_Rural_Area",
	}
}

func sampleRecord() []string {
	return []string{
		"2023010000001", "15/06/2023", "17:45", "-0.127600", "51.507200",
		"2", "2", "1",
		"6", "30", "1",
		"1", "1",
	}
}

func TestNormaliseColumn(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Accident_Severity", "accident_severity"},
		{"Accident Severity", "accident_severity"},
		{"1st_Road_Class", "first_road_class"},
		{" Speed_limit ", "speed_limit"},
		{"\uFEFFAccident_Index", "accident_index"},
		{"Local_Authority_(District)", "local_authority_district"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormaliseColumn(tc.in), tc.in)
	}
}

func TestParseAccident(t *testing.T) {
	cols := ColumnIndex(sampleHeader())

	a, err := ParseAccident(sampleRecord(), cols)
	require.NoError(t, err)

	assert.Equal(t, "2023010000001", a.AccidentIndex)
	assert.Equal(t, SeveritySerious, a.Severity)
	assert.True(t, a.IsKSI())
	assert.True(t, a.HasLocation)
	assert.InDelta(t, 51.5072, a.Location.Lat, 1e-6)
	assert.InDelta(t, -0.1276, a.Location.Lon, 1e-6)
	assert.Equal(t, 2, a.NumVehicles)
	assert.Equal(t, 30, a.SpeedLimit)
	assert.Equal(t, time.Date(2023, 6, 15, 17, 45, 0, 0, time.UTC), a.Time())
	// columns absent from the header come back as missing
	assert.Equal(t, MissingCode, a.PoliceForce)
}

func TestParseAccidentISODate(t *testing.T) {
	cols := ColumnIndex([]string{"accident_index", "date", "time", "accident_severity"})
	a, err := ParseAccident([]string{"X1", "2023-06-15", "09:05", "3"}, cols)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 15, 9, 5, 0, 0, time.UTC), a.Time())
	assert.False(t, a.HasLocation)
}

func TestParseAccidentMissingTimeDefaultsToMidnight(t *testing.T) {
	cols := ColumnIndex([]string{"accident_index", "date", "accident_severity"})
	a, err := ParseAccident([]string{"X1", "01/02/2023", "3"}, cols)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), a.Time())
}

func TestParseAccidentRejectsBadRecords(t *testing.T) {
	cols := ColumnIndex([]string{"accident_index", "date", "time", "accident_severity"})

	cases := []struct {
		name   string
		record []string
	}{
		{"missing index", []string{"", "15/06/2023", "17:45", "2"}},
		{"severity out of range", []string{"X1", "15/06/2023", "17:45", "5"}},
		{"non-numeric severity", []string{"X1", "15/06/2023", "17:45", "serious"}},
		{"bad date", []string{"X1", "2023/06/15", "17:45", "2"}},
		{"missing date", []string{"X1", "", "17:45", "2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAccident(tc.record, cols)
			assert.Error(t, err)
		})
	}
}

func TestParseAccidentMalformedCodedColumn(t *testing.T) {
	cols := ColumnIndex([]string{"accident_index", "date", "accident_severity", "speed_limit"})
	a, err := ParseAccident([]string{"X1", "15/06/2023", "3", "NULL"}, cols)
	require.NoError(t, err)
	assert.Equal(t, MissingCode, a.SpeedLimit)
}

func TestParseAccidentFillsDayOfWeek(t *testing.T) {
	cols := ColumnIndex([]string{"accident_index", "date", "accident_severity"})
	// 15/06/2023 is a Thursday, code 5 in 1=Sunday numbering
	a, err := ParseAccident([]string{"X1", "15/06/2023", "2"}, cols)
	require.NoError(t, err)
	assert.Equal(t, 5, a.DayOfWeek)
}

func TestCSVRowRoundTrip(t *testing.T) {
	cols := ColumnIndex(sampleHeader())
	a, err := ParseAccident(sampleRecord(), cols)
	require.NoError(t, err)

	row := a.CSVRow()
	require.Len(t, row, len(CanonicalColumns))

	b, err := ParseAccident(row, ColumnIndex(CanonicalColumns))
	require.NoError(t, err)
	assert.Equal(t, a.AccidentIndex, b.AccidentIndex)
	assert.Equal(t, a.Timestamp, b.Timestamp)
	assert.Equal(t, a.Severity, b.Severity)
	assert.Equal(t, a.SpeedLimit, b.SpeedLimit)
	assert.InDelta(t, a.Location.Lat, b.Location.Lat, 1e-6)
}

func TestLocationDistanceKm(t *testing.T) {
	london := Location{Lat: 51.5072, Lon: -0.1276}
	manchester := Location{Lat: 53.4808, Lon: -2.2426}

	d := london.DistanceKm(manchester)
	assert.InDelta(t, 262, d, 5)
	assert.Zero(t, london.DistanceKm(london))
}

func TestLocationInGreatBritain(t *testing.T) {
	assert.True(t, Location{Lat: 51.5, Lon: -0.1}.InGreatBritain())
	assert.True(t, Location{Lat: 57.1, Lon: -2.1}.InGreatBritain())
	// box edges are inclusive, covering Shetland and the East Anglian coast
	assert.True(t, Location{Lat: 61.5, Lon: 2.1}.InGreatBritain())
	assert.False(t, Location{Lat: 61.6, Lon: 2.1}.InGreatBritain())
	assert.False(t, Location{Lat: 61.5, Lon: 2.2}.InGreatBritain())
	assert.False(t, Location{Lat: 48.8, Lon: 2.35}.InGreatBritain())  // Paris
	assert.False(t, Location{Lat: 0, Lon: 0}.InGreatBritain())
}

func TestLocationScan(t *testing.T) {
	var l Location
	require.NoError(t, l.Scan("POINT(-0.1276 51.5072)"))
	assert.InDelta(t, -0.1276, l.Lon, 1e-6)
	assert.InDelta(t, 51.5072, l.Lat, 1e-6)

	assert.Error(t, l.Scan(42))
}

func TestCodeLabels(t *testing.T) {
	assert.Equal(t, "fatal", SeverityLabel(SeverityFatal))
	assert.Equal(t, "single_carriageway", RoadTypeLabel(6))
	assert.Equal(t, "unknown", RoadTypeLabel(MissingCode))
	assert.Equal(t, "wet_or_damp", SurfaceLabel(2))

	assert.True(t, IsDarkness(4))
	assert.False(t, IsDarkness(1))
	assert.True(t, IsWetSurface(3))
	assert.False(t, IsWetSurface(1))
	assert.False(t, IsWetSurface(MissingCode))
}
