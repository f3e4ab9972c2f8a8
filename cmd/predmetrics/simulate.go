package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/PredictionMetrics/internal/config"
	"github.com/Alias1177/PredictionMetrics/internal/report"
	"github.com/Alias1177/PredictionMetrics/internal/simulation"
)

var simulateThreshold float64

// simulateCmd replays the fixed five stock dataset.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Score the built-in five stock prediction dataset.",
	Example: `  # Text report with the default 0.5% status threshold
  predmetrics simulate

  # Stricter daily status and CSV export
  predmetrics simulate --threshold 0.3 --format csv -o simulation.csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Validate(cfg); err != nil {
			return err
		}
		threshold := cfg.StatusThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = simulateThreshold
		}
		if threshold <= 0 {
			return fmt.Errorf("threshold must be positive, got %g", threshold)
		}

		ev, err := simulation.Run(simulation.Dataset(), threshold)
		if err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}

		log.Info().
			Int("stocks", ev.Summary.Stocks).
			Int("predictions", ev.Summary.TotalPredictions).
			Float64("avg_mape", ev.Summary.AverageMAPE).
			Str("lowest_error", ev.Summary.LowestErrorSymbol).
			Msg("Simulation complete")

		return writeOutput(func(w io.Writer) error {
			return report.Write(w, ev, reportOptions())
		})
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateThreshold, "threshold", simulation.DefaultThreshold, "absolute error percent below which a day is OK")
}
