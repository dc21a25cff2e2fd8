package cmd

import (
	"encoding/json"
	"log"

	"github.com/roadlab/stats19/internal/ingest"
	"github.com/roadlab/stats19/internal/models"
	"github.com/roadlab/stats19/internal/pipeline"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest raw STATS19 CSV extracts into a canonical dataset",
	Run: func(cmd *cobra.Command, args []string) {
		inputDir, _ := cmd.Flags().GetString("input-dir")
		strict, _ := cmd.Flags().GetBool("strict")
		requireLocation, _ := cmd.Flags().GetBool("require-location")
		outputPath, _ := cmd.Flags().GetString("output-path")
		format, _ := cmd.Flags().GetString("output-format")

		files, err := ingest.ChunkFiles(inputDir)
		if err != nil {
			log.Fatalf("Failed to list input files: %v", err)
		}

		dest, err := sinkFromFlags(outputPath, format)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer dest.Close()

		opts := ingest.Options{Strict: strict, RequireLocation: requireLocation}
		res, err := ingest.ReadFiles(files, opts, func(a *models.Accident) error {
			msg, err := json.Marshal(a)
			if err != nil {
				return err
			}
			return dest.WriteMessage(pipeline.TopicAccidents, msg)
		})
		if err != nil {
			log.Fatalf("Ingest failed: %v", err)
		}

		log.Printf("Ingested %d files: %d rows read, %d kept, %d skipped",
			len(files), res.Read, res.Kept, res.Skipped)
	},
}

var mergeCSVCmd = &cobra.Command{
	Use:   "merge-csv",
	Short: "Merge CSV chunk files into a single file with one header",
	Run: func(cmd *cobra.Command, args []string) {
		inputDir, _ := cmd.Flags().GetString("input-dir")
		out, _ := cmd.Flags().GetString("out")

		files, err := ingest.ChunkFiles(inputDir)
		if err != nil {
			log.Fatalf("Failed to list input files: %v", err)
		}

		res, err := ingest.MergeCSV(files, out)
		if err != nil {
			log.Fatalf("Merge failed: %v", err)
		}
		log.Printf("Merged %d files (%d rows) into %s", res.Files, res.Rows, out)
	},
}

func init() {
	ingestCmd.Flags().String("input-dir", "", "Directory of raw CSV chunk files")
	ingestCmd.Flags().Bool("strict", false, "Treat malformed rows as errors")
	ingestCmd.Flags().Bool("require-location", false, "Drop records without usable GB coordinates")
	ingestCmd.Flags().String("output-path", "", "Output directory (defaults to config)")
	ingestCmd.Flags().String("output-format", "", "Output format: csv, json, parquet, postgres, console")
	ingestCmd.MarkFlagRequired("input-dir")

	mergeCSVCmd.Flags().String("input-dir", "", "Directory of CSV chunk files")
	mergeCSVCmd.Flags().String("out", "combined.csv", "Merged output file")
	mergeCSVCmd.MarkFlagRequired("input-dir")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(mergeCSVCmd)
}
