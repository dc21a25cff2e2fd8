package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/roadlab/stats19/internal/forecast"
	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast monthly collision counts",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		horizon, _ := cmd.Flags().GetInt("horizon")
		alpha, _ := cmd.Flags().GetFloat64("alpha")
		beta, _ := cmd.Flags().GetFloat64("beta")
		gamma, _ := cmd.Flags().GetFloat64("gamma")

		accidents, err := loadAccidents(input, false)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", input, err)
		}

		series, err := forecast.MonthlyCounts(accidents)
		if err != nil {
			log.Fatalf("Failed to build monthly series: %v", err)
		}

		opts := forecast.DefaultOptions()
		opts.Horizon = horizon
		opts.Alpha = alpha
		opts.Beta = beta
		opts.Gamma = gamma

		res, err := forecast.HoltWinters(series.Counts, opts)
		if err != nil {
			log.Fatalf("Forecast failed: %v", err)
		}

		model := "trend-only"
		if res.Seasonal {
			model = "seasonal"
		}
		fmt.Printf("fitted %s model on %d months (MAE %.1f, MAPE %.1f%%)\n\n",
			model, series.Len(), res.MAE, res.MAPE)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MONTH\tFORECAST")
		for h, v := range res.Forecast {
			month := series.Month(series.Len() + h)
			fmt.Fprintf(w, "%s\t%.0f\n", month.Format("2006-01"), v)
		}
		w.Flush()
	},
}

func init() {
	forecastCmd.Flags().String("input", "", "Canonical dataset CSV")
	forecastCmd.Flags().Int("horizon", 12, "Months to forecast ahead")
	forecastCmd.Flags().Float64("alpha", 0.35, "Level smoothing parameter")
	forecastCmd.Flags().Float64("beta", 0.1, "Trend smoothing parameter")
	forecastCmd.Flags().Float64("gamma", 0.2, "Seasonal smoothing parameter")
	forecastCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(forecastCmd)
}
