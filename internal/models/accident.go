package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// severity codes as used by the STATS19 reporting form
const (
	SeverityFatal   = 1
	SeveritySerious = 2
	SeveritySlight  = 3
)

// MissingCode marks an unknown value in coded STATS19 columns.
const MissingCode = -1

// Accident is a canonical STATS19 collision record. Column order in the
// yearly extracts varies, so parsing goes through a header map rather than
// positional indexes.
type Accident struct {
	AccidentIndex     string   `json:"accidentIndex" parquet:"name=accidentIndex,type=BYTE_ARRAY,convertedtype=UTF8"`
	Timestamp         int64    `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	Location          Location `json:"location" parquet:"name=location,type=STRUCT"`
	Easting           int      `json:"easting" parquet:"name=easting,type=INT64"`
	Northing          int      `json:"northing" parquet:"name=northing,type=INT64"`
	PoliceForce       int      `json:"policeForce" parquet:"name=policeForce,type=INT64"`
	Severity          int      `json:"severity" parquet:"name=severity,type=INT64"`
	NumVehicles       int      `json:"numVehicles" parquet:"name=numVehicles,type=INT64"`
	NumCasualties     int      `json:"numCasualties" parquet:"name=numCasualties,type=INT64"`
	DayOfWeek         int      `json:"dayOfWeek" parquet:"name=dayOfWeek,type=INT64"`
	FirstRoadClass    int      `json:"firstRoadClass" parquet:"name=firstRoadClass,type=INT64"`
	RoadType          int      `json:"roadType" parquet:"name=roadType,type=INT64"`
	SpeedLimit        int      `json:"speedLimit" parquet:"name=speedLimit,type=INT64"`
	JunctionDetail    int      `json:"junctionDetail" parquet:"name=junctionDetail,type=INT64"`
	LightConditions   int      `json:"lightConditions" parquet:"name=lightConditions,type=INT64"`
	WeatherConditions int      `json:"weatherConditions" parquet:"name=weatherConditions,type=INT64"`
	SurfaceConditions int      `json:"surfaceConditions" parquet:"name=surfaceConditions,type=INT64"`
	UrbanOrRural      int      `json:"urbanOrRural" parquet:"name=urbanOrRural,type=INT64"`
	HasLocation       bool     `json:"hasLocation" parquet:"name=hasLocation,type=BOOLEAN"`
}

// CanonicalColumns is the column order used for every CSV the pipeline writes.
var CanonicalColumns = []string{
	"accident_index",
	"date",
	"time",
	"longitude",
	"latitude",
	"location_easting_osgr",
	"location_northing_osgr",
	"police_force",
	"accident_severity",
	"number_of_vehicles",
	"number_of_casualties",
	"day_of_week",
	"first_road_class",
	"road_type",
	"speed_limit",
	"junction_detail",
	"light_conditions",
	"weather_conditions",
	"road_surface_conditions",
	"urban_or_rural_area",
}

// ColumnIndex maps normalised header names to their position in a record.
// Header normalisation lowercases and snake_cases, so "Accident_Severity",
// "accident_severity" and "Accident Severity" all resolve to the same key.
func ColumnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[NormaliseColumn(h)] = i
	}
	return cols
}

func NormaliseColumn(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "\uFEFF")
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, "(", "")
	name = strings.ReplaceAll(name, ")", "")
	// older extracts use "1st_road_class"
	name = strings.ReplaceAll(name, "1st_", "first_")
	name = strings.ReplaceAll(name, "2nd_", "second_")
	return name
}

// ParseAccident builds an Accident from a raw CSV record using the header
// map. Missing or malformed coded fields become MissingCode; an unparseable
// severity or timestamp makes the whole record invalid.
func ParseAccident(record []string, cols map[string]int) (*Accident, error) {
	index := fieldString(record, cols, "accident_index")
	if index == "" {
		return nil, fmt.Errorf("missing accident_index")
	}

	severity, err := fieldInt(record, cols, "accident_severity")
	if err != nil {
		return nil, fmt.Errorf("accident %s: bad severity: %w", index, err)
	}
	if severity != SeverityFatal && severity != SeveritySerious && severity != SeveritySlight {
		return nil, fmt.Errorf("accident %s: severity %d out of range", index, severity)
	}

	ts, err := parseTimestamp(
		fieldString(record, cols, "date"),
		fieldString(record, cols, "time"),
	)
	if err != nil {
		return nil, fmt.Errorf("accident %s: %w", index, err)
	}

	a := &Accident{
		AccidentIndex: index,
		Timestamp:     ts.Unix(),
		Severity:      severity,
	}

	lon, lonErr := fieldFloat(record, cols, "longitude")
	lat, latErr := fieldFloat(record, cols, "latitude")
	if lonErr == nil && latErr == nil {
		a.Location = Location{Lon: lon, Lat: lat}
		a.HasLocation = true
	}

	a.Easting = fieldCode(record, cols, "location_easting_osgr")
	a.Northing = fieldCode(record, cols, "location_northing_osgr")
	a.PoliceForce = fieldCode(record, cols, "police_force")
	a.NumVehicles = fieldCode(record, cols, "number_of_vehicles")
	a.NumCasualties = fieldCode(record, cols, "number_of_casualties")
	a.DayOfWeek = fieldCode(record, cols, "day_of_week")
	a.FirstRoadClass = fieldCode(record, cols, "first_road_class")
	a.RoadType = fieldCode(record, cols, "road_type")
	a.SpeedLimit = fieldCode(record, cols, "speed_limit")
	a.JunctionDetail = fieldCode(record, cols, "junction_detail")
	a.LightConditions = fieldCode(record, cols, "light_conditions")
	a.WeatherConditions = fieldCode(record, cols, "weather_conditions")
	a.SurfaceConditions = fieldCode(record, cols, "road_surface_conditions")
	a.UrbanOrRural = fieldCode(record, cols, "urban_or_rural_area")

	if a.DayOfWeek == MissingCode {
		// STATS19 day_of_week is 1=Sunday..7=Saturday
		a.DayOfWeek = int(ts.Weekday()) + 1
	}

	return a, nil
}

// IsKSI reports whether the collision was fatal or serious
// (the "killed or seriously injured" grouping used in DfT reporting).
func (a *Accident) IsKSI() bool {
	return a.Severity == SeverityFatal || a.Severity == SeveritySerious
}

func (a *Accident) Time() time.Time {
	return time.Unix(a.Timestamp, 0).UTC()
}

// CSVRow renders the record in CanonicalColumns order.
func (a *Accident) CSVRow() []string {
	t := a.Time()
	lon, lat := "", ""
	if a.HasLocation {
		lon = strconv.FormatFloat(a.Location.Lon, 'f', 6, 64)
		lat = strconv.FormatFloat(a.Location.Lat, 'f', 6, 64)
	}
	return []string{
		a.AccidentIndex,
		t.Format("02/01/2006"),
		t.Format("15:04"),
		lon,
		lat,
		codeString(a.Easting),
		codeString(a.Northing),
		codeString(a.PoliceForce),
		strconv.Itoa(a.Severity),
		codeString(a.NumVehicles),
		codeString(a.NumCasualties),
		codeString(a.DayOfWeek),
		codeString(a.FirstRoadClass),
		codeString(a.RoadType),
		codeString(a.SpeedLimit),
		codeString(a.JunctionDetail),
		codeString(a.LightConditions),
		codeString(a.WeatherConditions),
		codeString(a.SurfaceConditions),
		codeString(a.UrbanOrRural),
	}
}

func parseTimestamp(date, clock string) (time.Time, error) {
	if date == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation("02/01/2006 15:04", date+" "+clock, time.UTC)
	if err != nil {
		// newer extracts use ISO dates
		t, err = time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.UTC)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

func fieldString(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	v := strings.TrimSpace(record[i])
	if v == "NULL" || v == "null" || v == "N/A" {
		return ""
	}
	return v
}

func fieldInt(record []string, cols map[string]int, name string) (int, error) {
	v := fieldString(record, cols, name)
	if v == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	return strconv.Atoi(v)
}

func fieldFloat(record []string, cols map[string]int, name string) (float64, error) {
	v := fieldString(record, cols, name)
	if v == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	return strconv.ParseFloat(v, 64)
}

// fieldCode parses a coded column, treating anything unparseable as missing.
func fieldCode(record []string, cols map[string]int, name string) int {
	v := fieldString(record, cols, name)
	if v == "" {
		return MissingCode
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return MissingCode
	}
	return n
}

func codeString(code int) string {
	if code == MissingCode {
		return ""
	}
	return strconv.Itoa(code)
}
