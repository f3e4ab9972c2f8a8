package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/PredictionMetrics/internal/config"
	"github.com/Alias1177/PredictionMetrics/internal/evaluation"
	"github.com/Alias1177/PredictionMetrics/internal/report"
	"github.com/Alias1177/PredictionMetrics/models"
)

var (
	historyLimit int
	historyID    int64

	rescoreMethod   string
	rescoreInterval string
)

// historyCmd lists stored accuracy reports.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored accuracy reports, newest first.",
	Example: `  predmetrics history --limit 5
  predmetrics history --id 42 --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Validate(cfg); err != nil {
			return err
		}
		if historyLimit < 1 {
			return fmt.Errorf("limit must be positive, got %d", historyLimit)
		}

		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		var reports []models.AccuracyReport
		if cmd.Flags().Changed("id") {
			r, err := db.GetReport(cmd.Context(), historyID)
			if err != nil {
				return fmt.Errorf("get report %d: %w", historyID, err)
			}
			if r == nil {
				return fmt.Errorf("report %d not found", historyID)
			}
			reports = append(reports, *r)
		} else {
			reports, err = db.LatestReports(cmd.Context(), historyLimit)
			if err != nil {
				return fmt.Errorf("list reports: %w", err)
			}
		}

		log.Debug().Int("reports", len(reports)).Msg("Reports loaded")
		return writeOutput(func(w io.Writer) error {
			return report.WriteReports(w, reports, reportOptions())
		})
	},
}

// rescoreCmd recomputes the metrics of a stored series.
var rescoreCmd = &cobra.Command{
	Use:   "rescore SYMBOL",
	Short: "Recompute metrics from the observations stored for a symbol.",
	Example: `  predmetrics rescore AAPL --method naive
  predmetrics rescore AAPL --method "ema(5)" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Validate(cfg); err != nil {
			return err
		}
		symbol := args[0]

		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		series, err := db.LoadSeries(cmd.Context(), symbol, rescoreMethod)
		if err != nil {
			return fmt.Errorf("load series: %w", err)
		}
		if series == nil {
			return fmt.Errorf("no observations stored for %s with method %q", symbol, rescoreMethod)
		}

		outcome, err := evaluation.Score(*series, rescoreMethod, rescoreInterval, time.Now())
		if err != nil {
			return fmt.Errorf("rescore %s: %w", symbol, err)
		}

		log.Info().
			Str("symbol", symbol).
			Int("observations", len(series.Observations)).
			Int("samples", outcome.Report.Samples).
			Msg("Series rescored")
		return writeOutput(func(w io.Writer) error {
			return report.WriteReports(w, []models.AccuracyReport{outcome.Report}, reportOptions())
		})
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of reports")
	historyCmd.Flags().Int64Var(&historyID, "id", 0, "show a single report by id")

	rescoreCmd.Flags().StringVar(&rescoreMethod, "method", "naive", "stored forecast method name, e.g. naive or ema(5)")
	rescoreCmd.Flags().StringVar(&rescoreInterval, "interval", "1day", "interval recorded on the report")
}
