package cmd

import (
	"log"

	"github.com/roadlab/stats19/internal/dataset"
	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a canonical dataset into train and test CSVs",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		ratio, _ := cmd.Flags().GetFloat64("train-ratio")
		stratify, _ := cmd.Flags().GetBool("stratify")
		trainOut, _ := cmd.Flags().GetString("train-out")
		testOut, _ := cmd.Flags().GetString("test-out")

		accidents, err := loadAccidents(input, false)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", input, err)
		}

		train, test, err := dataset.Split(accidents, ratio, seedFlag(), stratify)
		if err != nil {
			log.Fatalf("Split failed: %v", err)
		}

		if err := writeAccidentsCSV(trainOut, train); err != nil {
			log.Fatalf("Failed to write %s: %v", trainOut, err)
		}
		if err := writeAccidentsCSV(testOut, test); err != nil {
			log.Fatalf("Failed to write %s: %v", testOut, err)
		}
		log.Printf("Split %d records into %d train / %d test", len(accidents), len(train), len(test))
	},
}

var concatParquetCmd = &cobra.Command{
	Use:   "concat-parquet",
	Short: "Concatenate parquet part files into a single file",
	Run: func(cmd *cobra.Command, args []string) {
		partsDir, _ := cmd.Flags().GetString("parts-dir")
		out, _ := cmd.Flags().GetString("out")

		plan, err := dataset.PlanConcat(partsDir, out)
		if err != nil {
			log.Fatalf("Failed to plan concat: %v", err)
		}
		if len(plan.Parts) == 0 {
			log.Fatalf("No part files found in %s", partsDir)
		}
		log.Printf("Found %d parts, total %s (free space %s)",
			len(plan.Parts), dataset.BytesToReadable(plan.TotalBytes), dataset.BytesToReadable(plan.FreeBytes))

		rows, err := dataset.Concat(plan, out)
		if err != nil {
			log.Fatalf("Concat failed: %v", err)
		}
		log.Printf("Wrote %d rows to %s", rows, out)
	},
}

func init() {
	splitCmd.Flags().String("input", "", "Canonical dataset CSV")
	splitCmd.Flags().Float64("train-ratio", 0.8, "Fraction of records in the training set")
	splitCmd.Flags().Bool("stratify", true, "Preserve severity class balance across the split")
	splitCmd.Flags().String("train-out", "train.csv", "Training set output file")
	splitCmd.Flags().String("test-out", "test.csv", "Test set output file")
	splitCmd.MarkFlagRequired("input")

	concatParquetCmd.Flags().String("parts-dir", "", "Directory of .parquet part files")
	concatParquetCmd.Flags().String("out", "combined.parquet", "Merged parquet output file")
	concatParquetCmd.MarkFlagRequired("parts-dir")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(concatParquetCmd)
}
