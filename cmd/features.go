package cmd

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"

	"github.com/roadlab/stats19/internal/features"
	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Export the model feature matrix for a canonical dataset",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("out")
		scale, _ := cmd.Flags().GetBool("scale")

		accidents, err := loadAccidents(input, false)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", input, err)
		}

		matrix := features.Build(accidents)
		if scale {
			scaler := features.FitScaler(matrix)
			if err := scaler.Apply(matrix); err != nil {
				log.Fatalf("Scaling failed: %v", err)
			}
		}

		f, err := os.Create(out)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", out, err)
		}
		defer f.Close()

		w := csv.NewWriter(f)
		header := append([]string{}, matrix.Names...)
		header = append(header, "severity")
		w.Write(header)
		for i, row := range matrix.Rows {
			record := make([]string, 0, len(row)+1)
			for _, v := range row {
				record = append(record, strconv.FormatFloat(v, 'f', 6, 64))
			}
			record = append(record, strconv.Itoa(matrix.Severity[i]))
			w.Write(record)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			log.Fatalf("Failed to write features: %v", err)
		}
		log.Printf("Wrote %d feature rows to %s", len(matrix.Rows), out)
	},
}

func init() {
	featuresCmd.Flags().String("input", "", "Canonical dataset CSV")
	featuresCmd.Flags().String("out", "features.csv", "Feature matrix output CSV")
	featuresCmd.Flags().Bool("scale", false, "Standardise columns to zero mean and unit variance")
	featuresCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(featuresCmd)
}
