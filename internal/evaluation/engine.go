// Package evaluation scores baseline forecasts against live market data.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/PredictionMetrics/internal/forecast"
	"github.com/Alias1177/PredictionMetrics/internal/metrics"
	"github.com/Alias1177/PredictionMetrics/models"
)

// ReportStore persists evaluated series and their reports.
type ReportStore interface {
	SaveObservations(ctx context.Context, series models.Series, method string) error
	SaveReport(ctx context.Context, r models.AccuracyReport) (int64, error)
}

// Notifier publishes the reports of a run.
type Notifier interface {
	Notify(ctx context.Context, reports []models.AccuracyReport) error
}

// Outcome is the evaluation of one symbol.
type Outcome struct {
	Series  models.Series         `json:"series"`
	Metrics metrics.Result        `json:"metrics"`
	Report  models.AccuracyReport `json:"report"`
}

// Engine handles evaluation runs
type Engine struct {
	client      models.CandleClient
	forecaster  forecast.Forecaster
	interval    string
	candleCount int

	store    ReportStore
	notifier Notifier
	now      func() time.Time
	logger   zerolog.Logger
}

// NewEngine creates a new evaluation engine
func NewEngine(client models.CandleClient, f forecast.Forecaster, interval string, candleCount int) *Engine {
	return &Engine{
		client:      client,
		forecaster:  f,
		interval:    interval,
		candleCount: candleCount,
		now:         time.Now,
		logger:      log.With().Str("component", "evaluation_engine").Logger(),
	}
}

// SetStore enables persistence of observations and reports
func (e *Engine) SetStore(s ReportStore) {
	e.store = s
}

// SetNotifier enables publishing of the run's reports
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

// Run evaluates every symbol in turn. A symbol that cannot be fetched or
// scored is logged and skipped; the run fails only when none succeeds.
func (e *Engine) Run(ctx context.Context, symbols []string) ([]Outcome, error) {
	if len(symbols) == 0 {
		return nil, errors.New("no symbols to evaluate")
	}

	var outcomes []Outcome
	var errs []error
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		outcome, err := e.evaluateSymbol(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return outcomes, ctx.Err()
			}
			e.logger.Error().Err(err).Str("symbol", symbol).Msg("Evaluation failed")
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}

		e.logger.Info().
			Str("symbol", symbol).
			Str("method", outcome.Report.Method).
			Int("samples", outcome.Report.Samples).
			Float64("mae", outcome.Metrics.MAE).
			Float64("rmse", outcome.Metrics.RMSE).
			Float64("mape", outcome.Metrics.MAPE).
			Float64("direction", outcome.Metrics.DirectionAccuracy).
			Msg("Symbol evaluated")
		outcomes = append(outcomes, outcome)
	}

	if len(outcomes) == 0 {
		return nil, fmt.Errorf("all symbols failed: %w", errors.Join(errs...))
	}

	if e.notifier != nil {
		reports := make([]models.AccuracyReport, len(outcomes))
		for i, o := range outcomes {
			reports[i] = o.Report
		}
		if err := e.notifier.Notify(ctx, reports); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to publish reports")
		}
	}

	return outcomes, nil
}

func (e *Engine) evaluateSymbol(ctx context.Context, symbol string) (Outcome, error) {
	candles, err := e.client.GetCandles(ctx, symbol, e.interval, e.candleCount)
	if err != nil {
		return Outcome{}, fmt.Errorf("fetch candles: %w", err)
	}

	series, err := BuildSeries(symbol, candles, e.forecaster)
	if err != nil {
		return Outcome{}, err
	}

	outcome, err := Score(series, e.forecaster.Name(), e.interval, e.now())
	if err != nil {
		return Outcome{}, err
	}
	report := outcome.Report

	if e.store != nil {
		if err := e.store.SaveObservations(ctx, series, report.Method); err != nil {
			return Outcome{}, fmt.Errorf("save observations: %w", err)
		}
		id, err := e.store.SaveReport(ctx, report)
		if err != nil {
			return Outcome{}, fmt.Errorf("save report: %w", err)
		}
		report.ID = id
	}

	outcome.Report = report
	return outcome, nil
}

// Score computes the metrics of a series and wraps them in a report.
func Score(series models.Series, method, interval string, createdAt time.Time) (Outcome, error) {
	res, err := metrics.Compute(series.Predicted(), series.Actual())
	if err != nil {
		return Outcome{}, fmt.Errorf("compute metrics: %w", err)
	}

	report := models.AccuracyReport{
		Symbol:            series.Symbol,
		Method:            method,
		Interval:          interval,
		Samples:           series.PredictionCount(),
		MAE:               res.MAE,
		RMSE:              res.RMSE,
		MAPE:              res.MAPE,
		DirectionAccuracy: res.DirectionAccuracy,
		CreatedAt:         createdAt.UTC(),
	}
	return Outcome{Series: series, Metrics: res, Report: report}, nil
}

// BuildSeries turns candle closes into a series of one-step-ahead forecasts.
func BuildSeries(symbol string, candles []models.Candle, f forecast.Forecaster) (models.Series, error) {
	if len(candles) < 3 {
		return models.Series{}, fmt.Errorf("need at least 3 candles, got %d: %w", len(candles), metrics.ErrInsufficientData)
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	predictions := forecast.ForSymbol(f, symbol).Forecast(closes)

	series := models.Series{
		Symbol:       symbol,
		Observations: make([]models.Observation, len(candles)),
	}
	for i, c := range candles {
		date, err := models.ParseCandleTime(c.Datetime)
		if err != nil {
			return models.Series{}, fmt.Errorf("candle %d datetime %q: %w", i, c.Datetime, err)
		}
		series.Observations[i] = models.Observation{
			Date:      date,
			Predicted: predictions[i],
			Actual:    c.Close,
		}
	}
	return series, nil
}
