package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roadlab/stats19/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const chunkHeader = "Accident_Index,Date,Time,Longitude,Latitude,Accident_Severity,Speed_limit\n"

func collect(t *testing.T, path string, opts Options) ([]*models.Accident, Result) {
	t.Helper()
	var out []*models.Accident
	res, err := ReadFile(path, opts, func(a *models.Accident) error {
		out = append(out, a)
		return nil
	})
	require.NoError(t, err)
	return out, res
}

func TestReadFileSkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "chunk.csv", chunkHeader+
		"A1,15/06/2023,17:45,-0.1276,51.5072,2,30\n"+
		"A2,15/06/2023,09:00,-0.12,51.51,9,30\n"+ // severity out of range
		"A3,not-a-date,09:00,-0.12,51.51,3,30\n"+
		"A4,16/06/2023,,,,3,60\n")

	accidents, res := collect(t, path, Options{})

	assert.Equal(t, 4, res.Read)
	assert.Equal(t, 2, res.Kept)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, accidents, 2)
	assert.Equal(t, "A1", accidents[0].AccidentIndex)
	assert.Equal(t, "A4", accidents[1].AccidentIndex)
	assert.False(t, accidents[1].HasLocation)
}

func TestReadFileStrict(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "chunk.csv", chunkHeader+
		"A1,15/06/2023,17:45,-0.1276,51.5072,2,30\n"+
		"A2,15/06/2023,09:00,-0.12,51.51,9,30\n")

	_, err := ReadFile(path, Options{Strict: true}, func(*models.Accident) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "severity")
}

func TestReadFileCleansNonGBCoordinates(t *testing.T) {
	dir := t.TempDir()
	// Paris coordinates are inside the lon box but below the lat floor
	path := writeCSV(t, dir, "chunk.csv", chunkHeader+
		"A1,15/06/2023,17:45,2.3522,48.8566,3,50\n")

	accidents, res := collect(t, path, Options{})
	assert.Equal(t, 1, res.Kept)
	assert.False(t, accidents[0].HasLocation)

	_, res = collect(t, path, Options{RequireLocation: true})
	assert.Equal(t, 0, res.Kept)
	assert.Equal(t, 1, res.Skipped)
}

func TestReadFileReorderedHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "chunk.csv",
		"Accident_Severity,Accident_Index,Date,Time\n"+
			"1,B7,01/01/2023,12:00\n")

	accidents, res := collect(t, path, Options{})
	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, "B7", accidents[0].AccidentIndex)
	assert.Equal(t, models.SeverityFatal, accidents[0].Severity)
}

func TestReadFileRejectsMissingIndexColumn(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "chunk.csv", "Date,Time\n01/01/2023,12:00\n")

	_, err := ReadFile(path, Options{}, func(*models.Accident) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accident_index")
}

func TestChunkFiles(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "chunk_2.csv", chunkHeader)
	writeCSV(t, dir, "chunk_1.csv", chunkHeader)
	writeCSV(t, dir, "notes.txt", "ignored")

	files, err := ChunkFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "chunk_1.csv", filepath.Base(files[0]))
	assert.Equal(t, "chunk_2.csv", filepath.Base(files[1]))

	_, err = ChunkFiles(filepath.Join(dir, "empty"))
	assert.Error(t, err)
}

func TestMergeCSV(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", chunkHeader+"A1,15/06/2023,17:45,-0.1,51.5,2,30\n")
	b := writeCSV(t, dir, "b.csv", chunkHeader+
		"B1,16/06/2023,08:00,-0.2,51.6,3,40\n"+
		"B2,16/06/2023,08:30,-0.3,51.7,3,40\n")
	out := filepath.Join(dir, "merged.csv")

	res, err := MergeCSV([]string{a, b}, out)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 3, res.Rows)

	accidents, readRes := collect(t, out, Options{})
	assert.Equal(t, 3, readRes.Kept)
	assert.Equal(t, "A1", accidents[0].AccidentIndex)
	assert.Equal(t, "B2", accidents[2].AccidentIndex)
}

func TestMergeCSVHeaderMismatch(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", chunkHeader+"A1,15/06/2023,17:45,-0.1,51.5,2,30\n")
	b := writeCSV(t, dir, "b.csv", "Accident_Index,Date\nB1,16/06/2023\n")

	_, err := MergeCSV([]string{a, b}, filepath.Join(dir, "merged.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header does not match")
}
