package features

import (
	"fmt"
	"math"
	"time"

	"github.com/roadlab/stats19/internal/models"
)

// FeatureNames is the fixed column order of the feature matrix. Model
// artifacts record this order and predictions must be built against the
// same list.
var FeatureNames = []string{
	"speed_limit",
	"num_vehicles",
	"num_casualties",
	"hour_sin",
	"hour_cos",
	"is_weekend",
	"is_darkness",
	"is_wet_surface",
	"is_rural",
	"road_roundabout",
	"road_one_way",
	"road_dual",
	"road_single",
	"road_slip",
}

// Matrix holds encoded rows plus their severity targets.
type Matrix struct {
	Names    []string
	Rows     [][]float64
	Severity []int
}

// Scaler carries per-feature standardisation parameters from training time.
type Scaler struct {
	Means   []float64 `json:"means"`
	Stddevs []float64 `json:"stddevs"`
}

// Build encodes accidents into the fixed feature layout. Coded values that
// are missing encode as zero after imputation with neutral defaults.
func Build(accidents []*models.Accident) *Matrix {
	m := &Matrix{Names: FeatureNames}
	for _, a := range accidents {
		m.Rows = append(m.Rows, encode(a))
		m.Severity = append(m.Severity, a.Severity)
	}
	return m
}

func encode(a *models.Accident) []float64 {
	t := a.Time()
	hourAngle := 2 * math.Pi * float64(t.Hour()) / 24

	row := make([]float64, len(FeatureNames))
	row[0] = imputeCode(a.SpeedLimit, 30)
	row[1] = imputeCode(a.NumVehicles, 1)
	row[2] = imputeCode(a.NumCasualties, 1)
	row[3] = math.Sin(hourAngle)
	row[4] = math.Cos(hourAngle)
	row[5] = boolFeature(t.Weekday() == time.Saturday || t.Weekday() == time.Sunday)
	row[6] = boolFeature(models.IsDarkness(a.LightConditions))
	row[7] = boolFeature(models.IsWetSurface(a.SurfaceConditions))
	row[8] = boolFeature(a.UrbanOrRural == 2)
	row[9] = boolFeature(a.RoadType == 1)
	row[10] = boolFeature(a.RoadType == 2)
	row[11] = boolFeature(a.RoadType == 3)
	row[12] = boolFeature(a.RoadType == 6)
	row[13] = boolFeature(a.RoadType == 7)
	return row
}

func imputeCode(code int, fallback float64) float64 {
	if code == models.MissingCode {
		return fallback
	}
	return float64(code)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FitScaler computes z-score parameters over the matrix. Constant columns
// keep a stddev of 1 so scaling them is a no-op rather than a divide by zero.
func FitScaler(m *Matrix) *Scaler {
	n := len(m.Rows)
	dims := len(m.Names)
	s := &Scaler{
		Means:   make([]float64, dims),
		Stddevs: make([]float64, dims),
	}
	if n == 0 {
		for j := range s.Stddevs {
			s.Stddevs[j] = 1
		}
		return s
	}

	for _, row := range m.Rows {
		for j, v := range row {
			s.Means[j] += v
		}
	}
	for j := range s.Means {
		s.Means[j] /= float64(n)
	}

	for _, row := range m.Rows {
		for j, v := range row {
			d := v - s.Means[j]
			s.Stddevs[j] += d * d
		}
	}
	for j := range s.Stddevs {
		s.Stddevs[j] = math.Sqrt(s.Stddevs[j] / float64(n))
		if s.Stddevs[j] == 0 {
			s.Stddevs[j] = 1
		}
	}
	return s
}

// Apply standardises the matrix in place using training-time parameters.
// The matrix layout must match the scaler's dimensionality.
func (s *Scaler) Apply(m *Matrix) error {
	if len(s.Means) != len(m.Names) {
		return fmt.Errorf("scaler has %d features, matrix has %d", len(s.Means), len(m.Names))
	}
	for _, row := range m.Rows {
		for j := range row {
			row[j] = (row[j] - s.Means[j]) / s.Stddevs[j]
		}
	}
	return nil
}

// CheckLayout verifies a matrix was built with the expected feature order.
func CheckLayout(m *Matrix, expected []string) error {
	if len(m.Names) != len(expected) {
		return fmt.Errorf("feature count mismatch: got %d, want %d", len(m.Names), len(expected))
	}
	for i := range expected {
		if m.Names[i] != expected[i] {
			return fmt.Errorf("feature %d is %q, want %q", i, m.Names[i], expected[i])
		}
	}
	return nil
}
