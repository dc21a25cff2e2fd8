package cmd

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/roadlab/stats19/internal/ingest"
	"github.com/roadlab/stats19/internal/models"
	"github.com/roadlab/stats19/internal/pipeline"
	"github.com/spf13/viper"
)

// loadAccidents reads a cleaned accident slice from a canonical CSV file.
func loadAccidents(path string, strict bool) ([]*models.Accident, error) {
	var accidents []*models.Accident
	res, err := ingest.ReadFile(path, ingest.Options{Strict: strict}, func(a *models.Accident) error {
		accidents = append(accidents, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d of %d rows in %s\n", res.Skipped, res.Read, path)
	}
	return accidents, nil
}

// writeAccidentsCSV writes records to a single flat CSV with the canonical
// header, for outputs like train/test splits that downstream tools consume
// as one file.
func writeAccidentsCSV(path string, accidents []*models.Accident) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.CanonicalColumns); err != nil {
		return err
	}
	for _, a := range accidents {
		if err := w.Write(a.CSVRow()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// sinkFromFlags builds the configured output destination, letting command
// flags override the config file.
func sinkFromFlags(outputPath, format string) (pipeline.OutputDestination, error) {
	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if outputPath != "" {
		cfg.OutputPath = outputPath
	}
	if format != "" {
		cfg.OutputFormat = format
	}
	if cfg.OutputFolder == "" {
		cfg.OutputFolder = "stats19_output"
	}
	return pipeline.ForConfig(cfg)
}

func seedFlag() int64 {
	return int64(viper.GetInt("seed"))
}
