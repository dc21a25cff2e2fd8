package spatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/lucsky/cuid"
	"github.com/roadlab/stats19/internal/models"
)

// Grid-binned hotspot detection. Collisions are bucketed into square cells
// sized in kilometres, scored by severity-weighted count, and the top cells
// are merged with their adjacent neighbours into ranked hotspot clusters.

var severityWeights = map[int]float64{
	models.SeverityFatal:   3,
	models.SeveritySerious: 2,
	models.SeveritySlight:  1,
}

type Options struct {
	CellSizeKm float64
	Top        int // number of clusters to keep, 0 means all
}

func DefaultOptions() Options {
	return Options{CellSizeKm: 1.0, Top: 20}
}

// Hotspot is a cluster of adjacent high-score cells.
type Hotspot struct {
	ID        string          `json:"id"`
	Centroid  models.Location `json:"centroid"`
	RadiusKm  float64         `json:"radiusKm"`
	Count     int             `json:"count"`
	Fatal     int             `json:"fatal"`
	Serious   int             `json:"serious"`
	Slight    int             `json:"slight"`
	Score     float64         `json:"score"`
	CellCount int             `json:"cellCount"`
}

type cellKey struct {
	row, col int
}

type cell struct {
	key     cellKey
	count   int
	fatal   int
	serious int
	slight  int
	score   float64
	latSum  float64
	lonSum  float64
}

// Detect bins located collisions into cells and merges adjacent cells into
// hotspots ordered by score. Records without coordinates are ignored; empty
// input yields an empty slice.
func Detect(accidents []*models.Accident, opts Options) ([]Hotspot, error) {
	if opts.CellSizeKm <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %g", opts.CellSizeKm)
	}

	// degree extent of one cell; longitude shrinks with latitude, anchored
	// at the dataset's mean latitude
	var latSum float64
	located := 0
	for _, a := range accidents {
		if a.HasLocation {
			latSum += a.Location.Lat
			located++
		}
	}
	if located == 0 {
		return nil, nil
	}
	meanLat := latSum / float64(located)
	latStep := opts.CellSizeKm / 111.0
	lonStep := opts.CellSizeKm / (111.0 * math.Cos(meanLat*math.Pi/180))

	cells := make(map[cellKey]*cell)
	for _, a := range accidents {
		if !a.HasLocation {
			continue
		}
		key := cellKey{
			row: int(math.Floor(a.Location.Lat / latStep)),
			col: int(math.Floor(a.Location.Lon / lonStep)),
		}
		c, ok := cells[key]
		if !ok {
			c = &cell{key: key}
			cells[key] = c
		}
		c.count++
		switch a.Severity {
		case models.SeverityFatal:
			c.fatal++
		case models.SeveritySerious:
			c.serious++
		default:
			c.slight++
		}
		c.score += severityWeights[a.Severity]
		c.latSum += a.Location.Lat
		c.lonSum += a.Location.Lon
	}

	clusters := mergeAdjacent(cells)
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Score > clusters[j].Score })

	if opts.Top > 0 && len(clusters) > opts.Top {
		clusters = clusters[:opts.Top]
	}
	return clusters, nil
}

// mergeAdjacent flood-fills 8-connected cells into clusters.
func mergeAdjacent(cells map[cellKey]*cell) []Hotspot {
	visited := make(map[cellKey]bool)
	var clusters []Hotspot

	// deterministic iteration order
	keys := make([]cellKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}
		return keys[i].col < keys[j].col
	})

	for _, start := range keys {
		if visited[start] {
			continue
		}

		var member []*cell
		stack := []cellKey{start}
		visited[start] = true
		for len(stack) > 0 {
			key := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			member = append(member, cells[key])

			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					neighbour := cellKey{row: key.row + dr, col: key.col + dc}
					if _, ok := cells[neighbour]; ok && !visited[neighbour] {
						visited[neighbour] = true
						stack = append(stack, neighbour)
					}
				}
			}
		}

		clusters = append(clusters, buildHotspot(member))
	}
	return clusters
}

func buildHotspot(member []*cell) Hotspot {
	h := Hotspot{ID: cuid.New(), CellCount: len(member)}

	var latSum, lonSum float64
	for _, c := range member {
		h.Count += c.count
		h.Fatal += c.fatal
		h.Serious += c.serious
		h.Slight += c.slight
		h.Score += c.score
		latSum += c.latSum
		lonSum += c.lonSum
	}
	h.Centroid = models.Location{
		Lat: latSum / float64(h.Count),
		Lon: lonSum / float64(h.Count),
	}

	// radius = distance from centroid to the farthest member cell centre
	for _, c := range member {
		cellCentre := models.Location{
			Lat: c.latSum / float64(c.count),
			Lon: c.lonSum / float64(c.count),
		}
		if d := h.Centroid.DistanceKm(cellCentre); d > h.RadiusKm {
			h.RadiusKm = d
		}
	}
	return h
}
