package sample

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/roadlab/stats19/internal/models"
)

// Synthetic STATS19 generator. Distributions approximate the published GB
// figures: about 1.3% of collisions fatal, about a fifth serious, traffic
// concentrated in the rush hours and around the urban core.

type Options struct {
	Count     int
	Start     time.Time
	End       time.Time
	CentreLat float64
	CentreLon float64
	// RadiusKm bounds the urban core; a tail of records lands outside it
	RadiusKm float64
	Seed     int64
}

func DefaultOptions() Options {
	return Options{
		Count:     10000,
		Start:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC),
		CentreLat: 51.5072,
		CentreLon: -0.1276,
		RadiusKm:  10,
		Seed:      42,
	}
}

type Generator struct {
	opts Options
	rng  *rand.Rand
	fake faker.Faker
	seq  int
}

func New(opts Options) (*Generator, error) {
	if opts.Count < 0 {
		return nil, fmt.Errorf("count cannot be negative, got %d", opts.Count)
	}
	if opts.End.Before(opts.Start) {
		return nil, fmt.Errorf("end %s precedes start %s",
			opts.End.Format(time.RFC3339), opts.Start.Format(time.RFC3339))
	}
	if opts.RadiusKm <= 0 {
		return nil, fmt.Errorf("urban radius must be positive, got %g", opts.RadiusKm)
	}
	return &Generator{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		fake: faker.NewWithSeed(rand.NewSource(opts.Seed)),
	}, nil
}

// Generate produces the configured number of synthetic collision records.
func (g *Generator) Generate() []*models.Accident {
	accidents := make([]*models.Accident, 0, g.opts.Count)
	for i := 0; i < g.opts.Count; i++ {
		accidents = append(accidents, g.next())
	}
	return accidents
}

func (g *Generator) next() *models.Accident {
	t := g.timestamp()
	loc := g.location()
	severity := g.severity()
	urban := 1
	if loc.DistanceKm(models.Location{Lat: g.opts.CentreLat, Lon: g.opts.CentreLon}) > g.opts.RadiusKm {
		urban = 2
	}

	g.seq++
	a := &models.Accident{
		AccidentIndex:     fmt.Sprintf("S%06d%s", g.seq, cuid.Slug()),
		Timestamp:         t.Unix(),
		Location:          loc,
		HasLocation:       true,
		PoliceForce:       g.fake.IntBetween(1, 98),
		Severity:          severity,
		NumVehicles:       g.vehicleCount(),
		NumCasualties:     g.casualtyCount(severity),
		DayOfWeek:         int(t.Weekday()) + 1,
		FirstRoadClass:    g.weighted([]int{3, 4, 5, 6}, []float64{0.3, 0.15, 0.1, 0.45}),
		RoadType:          g.weighted([]int{1, 2, 3, 6, 7}, []float64{0.07, 0.03, 0.15, 0.72, 0.03}),
		SpeedLimit:        g.speedLimit(urban),
		JunctionDetail:    g.weighted([]int{0, 1, 3, 6}, []float64{0.4, 0.1, 0.35, 0.15}),
		LightConditions:   g.lightConditions(t),
		WeatherConditions: g.weighted([]int{1, 2, 3, 7, 8}, []float64{0.78, 0.15, 0.02, 0.02, 0.03}),
		SurfaceConditions: g.weighted([]int{1, 2, 3, 4}, []float64{0.68, 0.28, 0.02, 0.02}),
		UrbanOrRural:      urban,
	}
	return a
}

// severity draws 1/2/3 with roughly the published GB proportions.
func (g *Generator) severity() int {
	return g.weighted(
		[]int{models.SeverityFatal, models.SeveritySerious, models.SeveritySlight},
		[]float64{0.013, 0.20, 0.787},
	)
}

// timestamp samples a random day in range, then an hour weighted towards
// the morning and evening peaks.
func (g *Generator) timestamp() time.Time {
	span := g.opts.End.Sub(g.opts.Start)
	days := 1 + int64(span/(24*time.Hour))
	day := g.opts.Start.Add(time.Duration(g.rng.Int63n(days)) * 24 * time.Hour)

	hour := g.weighted(
		[]int{3, 8, 12, 17, 21},
		[]float64{0.05, 0.25, 0.2, 0.35, 0.15},
	)
	// spread around the chosen block
	hour = (hour + g.rng.Intn(3) - 1 + 24) % 24

	return time.Date(day.Year(), day.Month(), day.Day(), hour, g.rng.Intn(60), 0, 0, time.UTC)
}

// location samples around the centre with gaussian spread; ~15% of records
// get triple the spread to form a rural tail.
func (g *Generator) location() models.Location {
	spreadKm := g.opts.RadiusKm / 2
	if g.rng.Float64() < 0.15 {
		spreadKm *= 3
	}

	latKm := g.gaussian() * spreadKm
	lonKm := g.gaussian() * spreadKm
	lat := g.opts.CentreLat + latKm/111.0
	lon := g.opts.CentreLon + lonKm/(111.0*math.Cos(g.opts.CentreLat*math.Pi/180))
	return models.Location{Lat: lat, Lon: lon}
}

func (g *Generator) vehicleCount() int {
	return g.weighted([]int{1, 2, 3, 4}, []float64{0.3, 0.58, 0.09, 0.03})
}

func (g *Generator) casualtyCount(severity int) int {
	if severity == models.SeverityFatal {
		return g.weighted([]int{1, 2, 3, 5}, []float64{0.6, 0.25, 0.1, 0.05})
	}
	return g.weighted([]int{1, 2, 3}, []float64{0.75, 0.18, 0.07})
}

func (g *Generator) speedLimit(urban int) int {
	if urban == 1 {
		return g.weighted([]int{20, 30, 40}, []float64{0.2, 0.7, 0.1})
	}
	return g.weighted([]int{40, 50, 60, 70}, []float64{0.15, 0.15, 0.5, 0.2})
}

func (g *Generator) lightConditions(t time.Time) int {
	hour := t.Hour()
	if hour >= 7 && hour <= 18 {
		return 1
	}
	return g.weighted([]int{4, 5, 6}, []float64{0.7, 0.1, 0.2})
}

// gaussian draws a standard normal via the Box-Muller transform.
func (g *Generator) gaussian() float64 {
	u1 := g.rng.Float64()
	u2 := g.rng.Float64()
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func (g *Generator) weighted(values []int, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return values[i]
		}
		r -= w
	}
	return values[len(values)-1]
}
