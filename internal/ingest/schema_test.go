package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discoverFixture(t *testing.T, csv string, opts DiscoverOptions) map[string]Column {
	t.Helper()
	schema, err := Discover(strings.NewReader(csv), opts)
	require.NoError(t, err)
	byName := make(map[string]Column, len(schema.Columns))
	for _, col := range schema.Columns {
		byName[col.Name] = col
	}
	return byName
}

func TestDiscoverClassifiesColumns(t *testing.T) {
	var b strings.Builder
	b.WriteString("Accident_Index,Date,Accident_Severity,Longitude,Notes\n")
	severities := []string{"1", "2", "3"}
	for i := 0; i < 30; i++ {
		b.WriteString("IDX")
		b.WriteByte(byte('A' + i%26))
		b.WriteString(string(rune('0' + i/26)))
		b.WriteString(",15/06/2023,")
		b.WriteString(severities[i%3])
		b.WriteString(",-0.127,free text\n")
	}

	cols := discoverFixture(t, b.String(), DiscoverOptions{})

	// unique-per-row identifier
	assert.Equal(t, RoleSkipped, cols["accident_index"].Role)

	assert.Equal(t, TypeDate, cols["date"].Type)
	assert.Equal(t, RoleDimension, cols["date"].Role)

	// small integer domain reads as a code table
	assert.Equal(t, TypeNumeric, cols["accident_severity"].Type)
	assert.Equal(t, RoleDimension, cols["accident_severity"].Role)
	assert.Equal(t, 3, cols["accident_severity"].UniqueCount)

	// decimals are measures
	assert.Equal(t, TypeNumeric, cols["longitude"].Type)
	assert.Equal(t, RoleMeasure, cols["longitude"].Role)

	assert.Equal(t, TypeString, cols["notes"].Type)
}

func TestDiscoverMixedTypesFallBackToString(t *testing.T) {
	// only half the values are numeric, below the 80% threshold
	cols := discoverFixture(t, "col\n1\n2\nx\ny\n", DiscoverOptions{})
	assert.Equal(t, TypeString, cols["col"].Type)
}

func TestDiscoverCountsNulls(t *testing.T) {
	cols := discoverFixture(t, "speed_limit\n30\nNULL\n-1\n\n60\n", DiscoverOptions{})
	col := cols["speed_limit"]
	assert.Equal(t, 3, col.NullCount)
	assert.Equal(t, 2, col.UniqueCount)
}

func TestDiscoverAllNullColumn(t *testing.T) {
	cols := discoverFixture(t, "a,b\n1,\n2,NULL\n", DiscoverOptions{})
	col := cols["b"]
	assert.Equal(t, RoleSkipped, col.Role)
	assert.NotEmpty(t, col.SkipReason)
}

func TestDiscoverSampleLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("v\n")
	for i := 0; i < 50; i++ {
		b.WriteString("1\n")
	}
	schema, err := Discover(strings.NewReader(b.String()), DiscoverOptions{SampleSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, schema.SampledRows)
}

func TestDiscoverEmptyInput(t *testing.T) {
	_, err := Discover(strings.NewReader("a,b\n"), DiscoverOptions{})
	assert.Error(t, err)
}
