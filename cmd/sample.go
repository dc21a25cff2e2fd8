package cmd

import (
	"log"
	"time"

	"github.com/roadlab/stats19/internal/pipeline"
	"github.com/roadlab/stats19/internal/sample"
	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a synthetic STATS19-shaped dataset",
	Run: func(cmd *cobra.Command, args []string) {
		count, _ := cmd.Flags().GetInt("count")
		startStr, _ := cmd.Flags().GetString("start-date")
		endStr, _ := cmd.Flags().GetString("end-date")
		lat, _ := cmd.Flags().GetFloat64("centre-lat")
		lon, _ := cmd.Flags().GetFloat64("centre-lon")
		radius, _ := cmd.Flags().GetFloat64("urban-radius-km")
		outputPath, _ := cmd.Flags().GetString("output-path")
		format, _ := cmd.Flags().GetString("output-format")

		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			log.Fatalf("Invalid start date: %v", err)
		}
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			log.Fatalf("Invalid end date: %v", err)
		}

		opts := sample.Options{
			Count:     count,
			Start:     start,
			End:       end,
			CentreLat: lat,
			CentreLon: lon,
			RadiusKm:  radius,
			Seed:      seedFlag(),
		}

		gen, err := sample.New(opts)
		if err != nil {
			log.Fatalf("Invalid sample options: %v", err)
		}

		dest, err := sinkFromFlags(outputPath, format)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer dest.Close()

		accidents := gen.Generate()
		if err := pipeline.WriteAccidents(dest, accidents); err != nil {
			log.Fatalf("Failed to write records: %v", err)
		}
		log.Printf("Generated %d synthetic collision records", len(accidents))
	},
}

func init() {
	sampleCmd.Flags().Int("count", 10000, "Number of records to generate")
	sampleCmd.Flags().String("start-date", "2023-01-01T00:00:00Z", "Start of the sampled period")
	sampleCmd.Flags().String("end-date", "2023-12-31T23:59:00Z", "End of the sampled period")
	sampleCmd.Flags().Float64("centre-lat", 51.5072, "Latitude of the urban centre")
	sampleCmd.Flags().Float64("centre-lon", -0.1276, "Longitude of the urban centre")
	sampleCmd.Flags().Float64("urban-radius-km", 10, "Urban core radius in km")
	sampleCmd.Flags().String("output-path", "", "Output directory (defaults to config)")
	sampleCmd.Flags().String("output-format", "", "Output format: csv, json, parquet, postgres, console")

	rootCmd.AddCommand(sampleCmd)
}
