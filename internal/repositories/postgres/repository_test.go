package postgres

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/roadlab/stats19/internal/models"
	"github.com/roadlab/stats19/internal/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

func maxPlaceholder(t *testing.T, query string) int {
	t.Helper()
	matches := placeholderPattern.FindAllStringSubmatch(query, -1)
	require.NotEmpty(t, matches)

	highest := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		if n > highest {
			highest = n
		}
	}
	return highest
}

func TestAccidentArgsMatchInsertPlaceholders(t *testing.T) {
	a := &models.Accident{
		AccidentIndex: "2023010000001",
		Timestamp:     1686850500,
		Location:      models.Location{Lat: 51.5072, Lon: -0.1276},
		HasLocation:   true,
		PoliceForce:   1,
		Severity:      models.SeveritySerious,
		NumVehicles:   2,
		NumCasualties: 1,
		SpeedLimit:    30,
	}

	args := accidentArgs(a)
	assert.Equal(t, maxPlaceholder(t, accidentInsert), len(args))

	// lon/lat feed ST_MakePoint, then the remaining columns in insert order
	assert.Equal(t, "2023010000001", args[0])
	assert.Equal(t, -0.1276, args[2])
	assert.Equal(t, 51.5072, args[3])
	assert.Equal(t, true, args[4])
	assert.Equal(t, 1, args[5], "police_force")
	assert.Equal(t, models.SeveritySerious, args[6])
}

func TestHotspotArgsMatchInsertPlaceholders(t *testing.T) {
	h := &spatial.Hotspot{
		ID:        "h1",
		Centroid:  models.Location{Lat: 51.5, Lon: -0.12},
		RadiusKm:  0.8,
		Count:     12,
		Fatal:     1,
		Serious:   3,
		Slight:    8,
		Score:     17,
		CellCount: 2,
	}

	args := hotspotArgs(h)
	assert.Equal(t, maxPlaceholder(t, hotspotInsert), len(args))

	assert.Equal(t, "h1", args[0])
	assert.Equal(t, -0.12, args[1])
	assert.Equal(t, 51.5, args[2])
	assert.Equal(t, 12, args[4])
}
