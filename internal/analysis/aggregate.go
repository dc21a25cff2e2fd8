package analysis

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/roadlab/stats19/internal/models"
)

// Group-and-aggregate over accident records: group by a named dimension,
// aggregate a measure, sort and limit. This is the engine behind the eda
// command.

type Group struct {
	Key   string
	Count int
	Value float64
}

// Dimension extracts a categorical label from an accident.
type Dimension func(*models.Accident) string

// Measure extracts a numeric value from an accident.
type Measure func(*models.Accident) float64

// Dimensions available to the eda command.
var Dimensions = map[string]Dimension{
	"severity":    func(a *models.Accident) string { return models.SeverityLabel(a.Severity) },
	"road_type":   func(a *models.Accident) string { return models.RoadTypeLabel(a.RoadType) },
	"light":       func(a *models.Accident) string { return models.LightLabel(a.LightConditions) },
	"weather":     func(a *models.Accident) string { return models.WeatherLabel(a.WeatherConditions) },
	"surface":     func(a *models.Accident) string { return models.SurfaceLabel(a.SurfaceConditions) },
	"area":        func(a *models.Accident) string { return models.UrbanRuralLabel(a.UrbanOrRural) },
	"road_class":  func(a *models.Accident) string { return models.FirstRoadClassLabel(a.FirstRoadClass) },
	"speed_limit": func(a *models.Accident) string { return codeLabel(a.SpeedLimit) },
	"hour":        func(a *models.Accident) string { return fmt.Sprintf("%02d", a.Time().Hour()) },
	"weekday":     func(a *models.Accident) string { return a.Time().Weekday().String() },
	"month":       func(a *models.Accident) string { return a.Time().Format("2006-01") },
	"year":        func(a *models.Accident) string { return a.Time().Format("2006") },
}

// Measures available to the eda command.
var Measures = map[string]Measure{
	"count":      func(a *models.Accident) float64 { return 1 },
	"casualties": func(a *models.Accident) float64 { return nonMissing(a.NumCasualties) },
	"vehicles":   func(a *models.Accident) float64 { return nonMissing(a.NumVehicles) },
	"ksi":        func(a *models.Accident) float64 { return boolMeasure(a.IsKSI()) },
}

// GroupAndAggregate runs the pipeline: group, aggregate, sort, limit.
// dimension2 is optional; when set, rows group by the composite
// "first/second" key. aggregation is one of count, sum, avg, min, max.
func GroupAndAggregate(accidents []*models.Accident, dimension, dimension2, measure, aggregation, sortBy string, limit int) ([]Group, error) {
	dim, ok := Dimensions[dimension]
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q", dimension)
	}
	var dim2 Dimension
	if dimension2 != "" {
		if dim2, ok = Dimensions[dimension2]; !ok {
			return nil, fmt.Errorf("unknown dimension %q", dimension2)
		}
	}
	mea, ok := Measures[measure]
	if !ok {
		return nil, fmt.Errorf("unknown measure %q", measure)
	}

	grouped := make(map[string][]float64)
	order := make([]string, 0)
	for _, a := range accidents {
		key := dim(a)
		if dim2 != nil {
			key = key + "/" + dim2(a)
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], mea(a))
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		values := grouped[key]
		g := Group{Key: key, Count: len(values)}
		switch aggregation {
		case "count":
			g.Value = float64(len(values))
		case "sum":
			g.Value = sum(values)
		case "avg":
			g.Value = sum(values) / float64(len(values))
		case "min":
			g.Value = minOf(values)
		case "max":
			g.Value = maxOf(values)
		default:
			return nil, fmt.Errorf("unknown aggregation %q", aggregation)
		}
		groups = append(groups, g)
	}

	sortGroups(groups, sortBy)
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}

// CrossTab counts accidents per dimension value and severity, with row
// shares so "% KSI by road type" style tables fall out directly.
type CrossRow struct {
	Key     string
	Fatal   int
	Serious int
	Slight  int
	Total   int
}

func (r CrossRow) KSIShare() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Fatal+r.Serious) / float64(r.Total)
}

func CrossTab(accidents []*models.Accident, dimension string) ([]CrossRow, error) {
	dim, ok := Dimensions[dimension]
	if !ok {
		return nil, fmt.Errorf("unknown dimension %q", dimension)
	}

	byKey := make(map[string]*CrossRow)
	order := make([]string, 0)
	for _, a := range accidents {
		key := dim(a)
		row, exists := byKey[key]
		if !exists {
			row = &CrossRow{Key: key}
			byKey[key] = row
			order = append(order, key)
		}
		switch a.Severity {
		case models.SeverityFatal:
			row.Fatal++
		case models.SeveritySerious:
			row.Serious++
		case models.SeveritySlight:
			row.Slight++
		}
		row.Total++
	}

	rows := make([]CrossRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *byKey[key])
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows, nil
}

func sortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case "value_desc":
		sort.Slice(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case "value_asc":
		sort.Slice(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case "key_asc":
		sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	case "key_desc":
		sort.Slice(groups, func(i, j int) bool { return groups[i].Key > groups[j].Key })
	default:
		// preserve first-seen order
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func nonMissing(code int) float64 {
	if code == models.MissingCode {
		return 0
	}
	return float64(code)
}

func boolMeasure(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func codeLabel(code int) string {
	if code == models.MissingCode {
		return "unknown"
	}
	return strconv.Itoa(code)
}
