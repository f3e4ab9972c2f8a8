package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/PredictionMetrics/internal/api/twelvedata"
	"github.com/Alias1177/PredictionMetrics/internal/config"
	"github.com/Alias1177/PredictionMetrics/internal/database"
	"github.com/Alias1177/PredictionMetrics/internal/evaluation"
	"github.com/Alias1177/PredictionMetrics/internal/forecast"
	"github.com/Alias1177/PredictionMetrics/internal/notify"
	"github.com/Alias1177/PredictionMetrics/internal/report"
	"github.com/Alias1177/PredictionMetrics/models"
)

var evaluateOpts struct {
	symbols  []string
	method   string
	interval string
	candles  int
	days     int
	store    bool
	notify   bool
}

// evaluateCmd scores a baseline forecaster on live candles.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a baseline forecast on live market data.",
	Example: `  # Naive forecast on the configured symbols
  predmetrics evaluate

  # EMA forecast on two symbols, stored and sent to Telegram
  predmetrics evaluate --symbols AAPL,MSFT --method ema --store --notify

  # Two weeks of hourly candles
  predmetrics evaluate --interval 1h --days 14`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyEvaluateFlags(cmd)
		if err := config.Validate(cfg); err != nil {
			return err
		}
		if cfg.TwelveAPIKey == "" {
			return errors.New("TWELVE_API_KEY is required to fetch candles")
		}
		ctx := cmd.Context()

		f, err := forecast.New(cfg.ForecastMethod, cfg.EMAPeriod, cfg.MockSeed)
		if err != nil {
			return err
		}

		client := twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:         cfg.TwelveAPIKey,
			RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
			RequestsPerSec: 5,
		})
		engine := evaluation.NewEngine(client, f, cfg.Interval, cfg.CandleCount)

		if cfg.StoreResults {
			db, err := openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			engine.SetStore(db)
		}

		if cfg.NotifyResults {
			if !cfg.Telegram.Enabled() {
				return errors.New("notifications need TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_IDS")
			}
			tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs)
			if err != nil {
				return err
			}
			engine.SetNotifier(tg)
		}

		log.Info().
			Strs("symbols", cfg.Symbols).
			Str("method", f.Name()).
			Str("interval", cfg.Interval).
			Int("candles", cfg.CandleCount).
			Bool("store", cfg.StoreResults).
			Bool("notify", cfg.NotifyResults).
			Msg("Starting evaluation")

		outcomes, err := engine.Run(ctx, cfg.Symbols)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}

		reports := make([]models.AccuracyReport, len(outcomes))
		for i, o := range outcomes {
			reports[i] = o.Report
		}
		return writeOutput(func(w io.Writer) error {
			return report.WriteReports(w, reports, reportOptions())
		})
	},
}

func init() {
	flags := evaluateCmd.Flags()
	flags.StringSliceVar(&evaluateOpts.symbols, "symbols", nil, "comma separated symbols (default from SYMBOLS)")
	flags.StringVar(&evaluateOpts.method, "method", forecast.MethodNaive, "forecast method: naive, drift, ema or mock")
	flags.StringVar(&evaluateOpts.interval, "interval", "1day", "candle interval")
	flags.IntVar(&evaluateOpts.candles, "candles", 30, "number of candles to fetch")
	flags.IntVar(&evaluateOpts.days, "days", 0, "fetch enough candles to cover this many days (instead of --candles)")
	evaluateCmd.MarkFlagsMutuallyExclusive("candles", "days")
	flags.BoolVar(&evaluateOpts.store, "store", false, "persist observations and reports to PostgreSQL")
	flags.BoolVar(&evaluateOpts.notify, "notify", false, "send the reports to the configured Telegram chats")
}

func applyEvaluateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("symbols") {
		var symbols []string
		for _, s := range evaluateOpts.symbols {
			symbols = append(symbols, config.SplitList(s)...)
		}
		cfg.Symbols = symbols
	}
	if flags.Changed("method") {
		cfg.ForecastMethod = evaluateOpts.method
	}
	if flags.Changed("interval") {
		cfg.Interval = evaluateOpts.interval
	}
	if flags.Changed("candles") {
		cfg.CandleCount = evaluateOpts.candles
	}
	if flags.Changed("days") {
		cfg.CandleCount = models.CandlesForDays(cfg.Interval, evaluateOpts.days)
	}
	if flags.Changed("store") {
		cfg.StoreResults = evaluateOpts.store
	}
	if flags.Changed("notify") {
		cfg.NotifyResults = evaluateOpts.notify
	}
}

// openDatabase connects to the configured PostgreSQL database.
func openDatabase(cmd *cobra.Command) (*database.DB, error) {
	if !cfg.DB.Enabled() {
		return nil, errors.New("database needs DB_HOST and DB_NAME")
	}
	db, err := database.New(cmd.Context(), database.ParamsFromConfig(cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
