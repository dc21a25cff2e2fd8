package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/roadlab/stats19/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Result summarises an ingest run.
type Result struct {
	Read    int
	Kept    int
	Skipped int
}

// Options control cleaning behaviour.
type Options struct {
	// Strict turns skipped rows into hard errors.
	Strict bool
	// RequireLocation drops records without parseable GB coordinates
	// instead of keeping them with HasLocation=false.
	RequireLocation bool
}

// ReadFile streams accidents from a single STATS19 CSV extract, calling fn
// for every record that survives cleaning. Rows that fail to parse are
// counted and skipped unless opts.Strict is set.
func ReadFile(path string, opts Options, fn func(*models.Accident) error) (Result, error) {
	var res Result

	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return res, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	cols := models.ColumnIndex(header)
	if _, ok := cols["accident_index"]; !ok {
		return res, fmt.Errorf("%s: no accident_index column", path)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if opts.Strict {
				return res, fmt.Errorf("%s row %d: %w", path, res.Read+2, err)
			}
			res.Read++
			res.Skipped++
			continue
		}
		res.Read++

		accident, err := clean(record, cols, opts)
		if err != nil {
			if opts.Strict {
				return res, fmt.Errorf("%s row %d: %w", path, res.Read+1, err)
			}
			res.Skipped++
			continue
		}

		if err := fn(accident); err != nil {
			return res, err
		}
		res.Kept++
	}

	return res, nil
}

// ReadFiles ingests every chunk file in order with a progress bar over files.
func ReadFiles(paths []string, opts Options, fn func(*models.Accident) error) (Result, error) {
	var total Result

	bar := progressbar.Default(int64(len(paths)), "ingesting")
	for _, path := range paths {
		res, err := ReadFile(path, opts, fn)
		total.Read += res.Read
		total.Kept += res.Kept
		total.Skipped += res.Skipped
		if err != nil {
			return total, err
		}
		if err := bar.Add(1); err != nil {
			log.Printf("progress bar error: %v", err)
		}
	}

	return total, nil
}

// clean applies the cleaning rules on top of parsing: coordinates outside the
// GB bounding box are treated as missing, and RequireLocation drops records
// that end up without a usable point.
func clean(record []string, cols map[string]int, opts Options) (*models.Accident, error) {
	accident, err := models.ParseAccident(record, cols)
	if err != nil {
		return nil, err
	}

	if accident.HasLocation && !accident.Location.InGreatBritain() {
		accident.Location = models.Location{}
		accident.HasLocation = false
	}
	if opts.RequireLocation && !accident.HasLocation {
		return nil, fmt.Errorf("accident %s: no usable coordinates", accident.AccidentIndex)
	}

	return accident, nil
}

// ChunkFiles lists the CSV chunk files under dir, sorted by name so ingest
// order is stable across runs.
func ChunkFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no csv files found in %s", dir)
	}
	sort.Strings(matches)
	return matches, nil
}
