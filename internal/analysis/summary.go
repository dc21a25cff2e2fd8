package analysis

import (
	"math"
	"sort"

	"github.com/roadlab/stats19/internal/models"
)

// NumericSummary describes one numeric column of the dataset.
type NumericSummary struct {
	Name    string
	Count   int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	Stddev  float64
}

// CategoricalSummary describes one coded column.
type CategoricalSummary struct {
	Name        string
	Count       int
	Missing     int
	Cardinality int
	Top         []ValueCount
}

type ValueCount struct {
	Value string
	Count int
}

// Summary is the eda overview of a dataset.
type Summary struct {
	Records      int
	WithLocation int
	Numeric      []NumericSummary
	Categorical  []CategoricalSummary
}

// Summarise computes column summaries over the cleaned records.
func Summarise(accidents []*models.Accident) *Summary {
	s := &Summary{Records: len(accidents)}
	for _, a := range accidents {
		if a.HasLocation {
			s.WithLocation++
		}
	}

	numericCols := []struct {
		name string
		get  func(*models.Accident) (float64, bool)
	}{
		{"speed_limit", func(a *models.Accident) (float64, bool) { return codeValue(a.SpeedLimit) }},
		{"number_of_vehicles", func(a *models.Accident) (float64, bool) { return codeValue(a.NumVehicles) }},
		{"number_of_casualties", func(a *models.Accident) (float64, bool) { return codeValue(a.NumCasualties) }},
	}
	for _, col := range numericCols {
		s.Numeric = append(s.Numeric, summariseNumeric(col.name, accidents, col.get))
	}

	for _, dim := range []string{"severity", "road_type", "light", "weather", "surface", "area"} {
		s.Categorical = append(s.Categorical, summariseCategorical(dim, accidents))
	}
	return s
}

func summariseNumeric(name string, accidents []*models.Accident, get func(*models.Accident) (float64, bool)) NumericSummary {
	out := NumericSummary{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}

	var values []float64
	for _, a := range accidents {
		v, ok := get(a)
		if !ok {
			out.Missing++
			continue
		}
		values = append(values, v)
		if v < out.Min {
			out.Min = v
		}
		if v > out.Max {
			out.Max = v
		}
		out.Mean += v
	}

	out.Count = len(values)
	if out.Count == 0 {
		out.Min, out.Max = 0, 0
		return out
	}
	out.Mean /= float64(out.Count)

	var ss float64
	for _, v := range values {
		d := v - out.Mean
		ss += d * d
	}
	out.Stddev = math.Sqrt(ss / float64(out.Count))
	return out
}

func summariseCategorical(dimension string, accidents []*models.Accident) CategoricalSummary {
	out := CategoricalSummary{Name: dimension}
	dim := Dimensions[dimension]

	counts := make(map[string]int)
	for _, a := range accidents {
		label := dim(a)
		if label == "unknown" {
			out.Missing++
		}
		counts[label]++
		out.Count++
	}

	out.Cardinality = len(counts)
	for value, count := range counts {
		out.Top = append(out.Top, ValueCount{Value: value, Count: count})
	}
	sort.Slice(out.Top, func(i, j int) bool {
		if out.Top[i].Count != out.Top[j].Count {
			return out.Top[i].Count > out.Top[j].Count
		}
		return out.Top[i].Value < out.Top[j].Value
	})
	if len(out.Top) > 5 {
		out.Top = out.Top[:5]
	}
	return out
}

func codeValue(code int) (float64, bool) {
	if code == models.MissingCode {
		return 0, false
	}
	return float64(code), true
}
