package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/roadlab/stats19/internal/models"
)

// Column classification for the EDA surface. Samples rows, detects a type
// per column and assigns it a role: dimension (groupable), measure
// (aggregatable) or skipped (identifiers, free text).

type ColumnType int

const (
	TypeString ColumnType = iota
	TypeNumeric
	TypeDate
	TypeBool
)

func (t ColumnType) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeDate:
		return "date"
	case TypeBool:
		return "bool"
	default:
		return "string"
	}
}

type ColumnRole int

const (
	RoleDimension ColumnRole = iota
	RoleMeasure
	RoleSkipped
)

func (r ColumnRole) String() string {
	switch r {
	case RoleMeasure:
		return "measure"
	case RoleSkipped:
		return "skipped"
	default:
		return "dimension"
	}
}

type Column struct {
	Name        string
	Type        ColumnType
	Role        ColumnRole
	SkipReason  string
	UniqueCount int
	NullCount   int
	Samples     []string
}

type Schema struct {
	Columns     []Column
	SampledRows int
}

// DiscoverOptions controls schema sampling.
type DiscoverOptions struct {
	SampleSize int // max rows to inspect, 0 means 1000
}

// Discover infers a schema from a CSV stream by sampling rows.
func Discover(r io.Reader, opts DiscoverOptions) (*Schema, error) {
	limit := opts.SampleSize
	if limit <= 0 {
		limit = 1000
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("csv has no columns")
	}

	var rows [][]string
	for i := 0; i < limit; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows while sampling
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	schema := &Schema{SampledRows: len(rows)}
	for i, name := range header {
		schema.Columns = append(schema.Columns, analyzeColumn(models.NormaliseColumn(name), i, rows))
	}
	return schema, nil
}

func analyzeColumn(name string, index int, rows [][]string) Column {
	col := Column{Name: name}

	var values []string
	uniques := make(map[string]bool)
	for _, row := range rows {
		if index >= len(row) {
			col.NullCount++
			continue
		}
		v := strings.TrimSpace(row[index])
		if v == "" || v == "NULL" || v == "null" || v == "-1" {
			col.NullCount++
			continue
		}
		values = append(values, v)
		uniques[v] = true
	}
	col.UniqueCount = len(uniques)

	if len(values) == 0 {
		col.Role = RoleSkipped
		col.SkipReason = "all values empty or null"
		return col
	}

	col.Samples = collectSamples(uniques, 5)
	col.Type = detectType(values)
	col.Role = classifyRole(col, len(rows), values)
	return col
}

func classifyRole(col Column, totalRows int, values []string) ColumnRole {
	switch col.Type {
	case TypeNumeric:
		if col.UniqueCount == totalRows && totalRows > 10 {
			return RoleSkipped
		}
		hasDecimals := false
		for _, v := range values {
			if strings.Contains(v, ".") {
				hasDecimals = true
				break
			}
		}
		if hasDecimals {
			return RoleMeasure
		}
		// small integer domains are STATS19 code tables, treat as dimensions
		if col.UniqueCount < 20 && float64(col.UniqueCount)/float64(totalRows) < 0.3 {
			return RoleDimension
		}
		return RoleMeasure
	case TypeDate, TypeBool:
		return RoleDimension
	default:
		if col.UniqueCount == totalRows && totalRows > 10 {
			return RoleSkipped
		}
		return RoleDimension
	}
}

func detectType(values []string) ColumnType {
	numCount, dateCount, boolCount := 0, 0, 0
	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
		if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)
	if boolCount >= threshold {
		return TypeBool
	}
	if dateCount >= threshold {
		return TypeDate
	}
	if numCount >= threshold {
		return TypeNumeric
	}
	return TypeString
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

var dateFormats = []string{
	"02/01/2006",
	"2006-01-02",
	"15:04",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if _, err := time.Parse(format, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "false" || s == "yes" || s == "no"
}

func collectSamples(uniques map[string]bool, max int) []string {
	samples := make([]string, 0, len(uniques))
	for v := range uniques {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > max {
		samples = samples[:max]
	}
	return samples
}
