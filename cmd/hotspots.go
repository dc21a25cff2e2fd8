package cmd

import (
	"log"

	"github.com/roadlab/stats19/internal/pipeline"
	"github.com/roadlab/stats19/internal/spatial"
	"github.com/spf13/cobra"
)

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "Detect collision hotspot clusters from a canonical dataset",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		cellSize, _ := cmd.Flags().GetFloat64("cell-size-km")
		top, _ := cmd.Flags().GetInt("top")
		outputPath, _ := cmd.Flags().GetString("output-path")
		format, _ := cmd.Flags().GetString("output-format")

		accidents, err := loadAccidents(input, false)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", input, err)
		}

		opts := spatial.DefaultOptions()
		opts.CellSizeKm = cellSize
		opts.Top = top

		hotspots, err := spatial.Detect(accidents, opts)
		if err != nil {
			log.Fatalf("Detection failed: %v", err)
		}
		if len(hotspots) == 0 {
			log.Printf("No located records in %s, nothing to cluster", input)
			return
		}

		dest, err := sinkFromFlags(outputPath, format)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer dest.Close()

		if err := pipeline.WriteHotspots(dest, hotspots); err != nil {
			log.Fatalf("Failed to write hotspots: %v", err)
		}
		log.Printf("Detected %d hotspot clusters (top score %.0f, %d collisions)",
			len(hotspots), hotspots[0].Score, hotspots[0].Count)
	},
}

func init() {
	hotspotsCmd.Flags().String("input", "", "Canonical dataset CSV")
	hotspotsCmd.Flags().Float64("cell-size-km", 1.0, "Grid cell size in km")
	hotspotsCmd.Flags().Int("top", 20, "Keep only the N highest-scoring clusters (0 keeps all)")
	hotspotsCmd.Flags().String("output-path", "", "Output directory (defaults to config)")
	hotspotsCmd.Flags().String("output-format", "", "Output format: csv, json, parquet, postgres, console")
	hotspotsCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(hotspotsCmd)
}
