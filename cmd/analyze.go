package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/roadlab/stats19/internal/analysis"
	"github.com/roadlab/stats19/internal/ingest"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Infer column types and roles from a CSV file",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		sampleSize, _ := cmd.Flags().GetInt("sample-size")

		f, err := os.Open(input)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", input, err)
		}
		defer f.Close()

		schema, err := ingest.Discover(f, ingest.DiscoverOptions{SampleSize: sampleSize})
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COLUMN\tTYPE\tROLE\tUNIQUE\tNULLS\tSAMPLES")
		for _, col := range schema.Columns {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%v\n",
				col.Name, col.Type, col.Role, col.UniqueCount, col.NullCount, col.Samples)
		}
		w.Flush()
		fmt.Printf("\nsampled %d rows\n", schema.SampledRows)
	},
}

var edaCmd = &cobra.Command{
	Use:   "eda",
	Short: "Exploratory analysis over a canonical dataset",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		dimension, _ := cmd.Flags().GetString("dimension")
		dimension2, _ := cmd.Flags().GetString("dimension2")
		measure, _ := cmd.Flags().GetString("measure")
		agg, _ := cmd.Flags().GetString("agg")
		sortBy, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		crosstab, _ := cmd.Flags().GetBool("crosstab")

		accidents, err := loadAccidents(input, false)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", input, err)
		}

		if dimension == "" {
			printSummary(analysis.Summarise(accidents))
			return
		}

		if crosstab {
			rows, err := analysis.CrossTab(accidents, dimension)
			if err != nil {
				log.Fatalf("Crosstab failed: %v", err)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, dimension+"\tFATAL\tSERIOUS\tSLIGHT\tTOTAL\tKSI%")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.1f\n",
					row.Key, row.Fatal, row.Serious, row.Slight, row.Total, row.KSIShare()*100)
			}
			w.Flush()
			return
		}

		groups, err := analysis.GroupAndAggregate(accidents, dimension, dimension2, measure, agg, sortBy, limit)
		if err != nil {
			log.Fatalf("Aggregation failed: %v", err)
		}
		keyLabel := dimension
		if dimension2 != "" {
			keyLabel = dimension + "/" + dimension2
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\tCOUNT\t%s(%s)\n", keyLabel, agg, measure)
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t%d\t%.2f\n", g.Key, g.Count, g.Value)
		}
		w.Flush()
	},
}

func printSummary(s *analysis.Summary) {
	fmt.Printf("records: %d (with coordinates: %d)\n\n", s.Records, s.WithLocation)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMERIC\tCOUNT\tMISSING\tMIN\tMAX\tMEAN\tSTDDEV")
	for _, col := range s.Numeric {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\t%.0f\t%.2f\t%.2f\n",
			col.Name, col.Count, col.Missing, col.Min, col.Max, col.Mean, col.Stddev)
	}
	w.Flush()
	fmt.Println()

	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORICAL\tCARDINALITY\tTOP VALUES")
	for _, col := range s.Categorical {
		fmt.Fprintf(w, "%s\t%d\t", col.Name, col.Cardinality)
		for i, vc := range col.Top {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%s=%d", vc.Value, vc.Count)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}

func init() {
	schemaCmd.Flags().String("input", "", "CSV file to inspect")
	schemaCmd.Flags().Int("sample-size", 1000, "Rows to sample for inference")
	schemaCmd.MarkFlagRequired("input")

	edaCmd.Flags().String("input", "", "Canonical dataset CSV")
	edaCmd.Flags().String("dimension", "", "Dimension to group by (empty prints the overview)")
	edaCmd.Flags().String("dimension2", "", "Optional second dimension for composite grouping")
	edaCmd.Flags().String("measure", "count", "Measure to aggregate")
	edaCmd.Flags().String("agg", "count", "Aggregation: count, sum, avg, min, max")
	edaCmd.Flags().String("sort", "value_desc", "Sort: value_desc, value_asc, key_asc, key_desc")
	edaCmd.Flags().Int("limit", 0, "Keep only the first N groups")
	edaCmd.Flags().Bool("crosstab", false, "Cross-tabulate the dimension against severity")
	edaCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(edaCmd)
}
