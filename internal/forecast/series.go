package forecast

import (
	"fmt"
	"time"

	"github.com/roadlab/stats19/internal/models"
)

// MonthlySeries is a contiguous monthly collision-count series. Months with
// no collisions between the first and last observation are zero-filled so
// the seasonal model sees a regular grid.
type MonthlySeries struct {
	Start  time.Time // first day of the first month, UTC
	Counts []float64
}

// MonthlyCounts buckets accidents into calendar months.
func MonthlyCounts(accidents []*models.Accident) (*MonthlySeries, error) {
	if len(accidents) == 0 {
		return nil, fmt.Errorf("no records to bucket")
	}

	var first, last time.Time
	counts := make(map[time.Time]float64)
	for _, a := range accidents {
		t := a.Time()
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[month]++
		if first.IsZero() || month.Before(first) {
			first = month
		}
		if month.After(last) {
			last = month
		}
	}

	series := &MonthlySeries{Start: first}
	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		series.Counts = append(series.Counts, counts[month])
	}
	return series, nil
}

// Month returns the calendar month of index i.
func (s *MonthlySeries) Month(i int) time.Time {
	return s.Start.AddDate(0, i, 0)
}

func (s *MonthlySeries) Len() int {
	return len(s.Counts)
}
