package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
)

// MergeResult reports what a CSV merge produced.
type MergeResult struct {
	Files int
	Rows  int
}

// MergeCSV glues chunk files into a single CSV with one header. Every chunk
// must carry the same header as the first; the merged file keeps chunk order.
func MergeCSV(paths []string, outPath string) (MergeResult, error) {
	var res MergeResult
	if len(paths) == 0 {
		return res, fmt.Errorf("no input files to merge")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return res, fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)

	var header []string
	bar := progressbar.Default(int64(len(paths)), "merging")

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return res, fmt.Errorf("failed to open %s: %w", path, err)
		}

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1

		h, err := r.Read()
		if err != nil {
			f.Close()
			return res, fmt.Errorf("failed to read header of %s: %w", path, err)
		}

		if header == nil {
			header = h
			if err := w.Write(header); err != nil {
				f.Close()
				return res, err
			}
		} else if !sameHeader(header, h) {
			f.Close()
			return res, fmt.Errorf("%s: header does not match first chunk", path)
		}

		for {
			record, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				f.Close()
				return res, fmt.Errorf("%s: %w", path, err)
			}
			if err := w.Write(record); err != nil {
				f.Close()
				return res, err
			}
			res.Rows++
		}

		f.Close()
		res.Files++
		if err := bar.Add(1); err != nil {
			log.Printf("progress bar error: %v", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return res, err
	}
	return res, nil
}

func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
