package models

// STATS19 code tables, per the DfT variable lookup. Only the columns the
// pipeline reports on are mapped; anything else stays numeric.

var severityLabels = map[int]string{
	SeverityFatal:   "fatal",
	SeveritySerious: "serious",
	SeveritySlight:  "slight",
}

var roadTypeLabels = map[int]string{
	1: "roundabout",
	2: "one_way_street",
	3: "dual_carriageway",
	6: "single_carriageway",
	7: "slip_road",
	9: "unknown",
}

var lightLabels = map[int]string{
	1: "daylight",
	4: "darkness_lit",
	5: "darkness_unlit",
	6: "darkness_no_lighting",
	7: "darkness_lighting_unknown",
}

var weatherLabels = map[int]string{
	1: "fine",
	2: "rain",
	3: "snow",
	4: "fine_high_winds",
	5: "rain_high_winds",
	6: "snow_high_winds",
	7: "fog_or_mist",
	8: "other",
	9: "unknown",
}

var surfaceLabels = map[int]string{
	1: "dry",
	2: "wet_or_damp",
	3: "snow",
	4: "frost_or_ice",
	5: "flood",
	6: "oil_or_diesel",
	7: "mud",
}

var urbanRuralLabels = map[int]string{
	1: "urban",
	2: "rural",
	3: "unallocated",
}

var firstRoadClassLabels = map[int]string{
	1: "motorway",
	2: "a_m",
	3: "a",
	4: "b",
	5: "c",
	6: "unclassified",
}

func lookup(table map[int]string, code int) string {
	if label, ok := table[code]; ok {
		return label
	}
	return "unknown"
}

func SeverityLabel(code int) string       { return lookup(severityLabels, code) }
func RoadTypeLabel(code int) string       { return lookup(roadTypeLabels, code) }
func LightLabel(code int) string          { return lookup(lightLabels, code) }
func WeatherLabel(code int) string        { return lookup(weatherLabels, code) }
func SurfaceLabel(code int) string        { return lookup(surfaceLabels, code) }
func UrbanRuralLabel(code int) string     { return lookup(urbanRuralLabels, code) }
func FirstRoadClassLabel(code int) string { return lookup(firstRoadClassLabels, code) }

// IsDarkness reports whether a light_conditions code means darkness.
func IsDarkness(code int) bool {
	return code >= 4 && code <= 7
}

// IsWetSurface reports whether a road_surface_conditions code means a
// compromised surface (anything other than dry).
func IsWetSurface(code int) bool {
	return code >= 2 && code <= 7
}
