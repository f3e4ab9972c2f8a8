package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/PredictionMetrics/internal/config"
	"github.com/Alias1177/PredictionMetrics/internal/report"
	"github.com/Alias1177/PredictionMetrics/models"
)

// cfg holds the validated configuration after flag overrides.
var cfg *models.Config

// Output flags shared by every subcommand.
var (
	outputFormat string
	outputFile   string
	precision    int
	noColor      bool
	logLevel     string
)

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "predmetrics",
	Short: "Measure how accurate price predictions are.",
	Long: `predmetrics scores predicted prices against actual prices with
MAE, RMSE, MAPE and direction accuracy.

It can replay the built-in five stock simulation, evaluate baseline
forecasts on live Twelve Data candles, and list stored accuracy reports.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PersistentPreRunE:  loadConfig,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&outputFormat, "format", report.TextOut, "output format: text, json or csv")
	flags.StringVarP(&outputFile, "output", "o", "", "write output to this file instead of stdout")
	flags.IntVar(&precision, "precision", 2, "decimal places in rendered numbers")
	flags.BoolVar(&noColor, "no-color", false, "disable colored text output")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rescoreCmd)
}

// loadConfig reads the environment and applies the shared flags that were
// set. Commands validate once their own overrides are in place.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("format") {
		cfg.OutputFormat = outputFormat
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("no-color") {
		cfg.NoColor = noColor
	}
	setupLogging(cfg.LogLevel)

	log.Debug().
		Str("command", cmd.Name()).
		Str("format", cfg.OutputFormat).
		Int("precision", cfg.Precision).
		Msg("Configuration loaded")
	return nil
}

func reportOptions() report.Options {
	return report.Options{
		Format:    cfg.OutputFormat,
		Precision: cfg.Precision,
		NoColor:   cfg.NoColor,
	}
}

// writeOutput sends rendered output to --output or stdout.
func writeOutput(write func(io.Writer) error) error {
	if err := report.WriteFile(outputFile, write); err != nil {
		return err
	}
	if outputFile != "" && outputFile != "-" {
		log.Info().Str("path", outputFile).Msg("Output written")
	}
	return nil
}
