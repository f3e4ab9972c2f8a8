// Package simulation scores a set of forecast series and summarizes them the
// way the weekly simulation report presents them.
package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/Alias1177/PredictionMetrics/internal/metrics"
	"github.com/Alias1177/PredictionMetrics/models"
)

// DailyResult is one line of the per-day breakdown.
type DailyResult struct {
	Date         time.Time `json:"date"`
	Predicted    float64   `json:"predicted"`
	Actual       float64   `json:"actual"`
	Error        float64   `json:"error"`         // predicted - actual
	ErrorPercent float64   `json:"error_percent"` // error relative to actual
	OK           bool      `json:"ok"`
}

// StockReport is the evaluation of a single series.
type StockReport struct {
	Symbol      string         `json:"symbol"`
	Name        string         `json:"name"`
	Currency    string         `json:"currency"`
	StartPrice  float64        `json:"start_price"`
	EndPrice    float64        `json:"end_price"`
	TotalChange float64        `json:"total_change_pct"`
	Predictions int            `json:"predictions"`
	Metrics     metrics.Result `json:"metrics"`
	Accuracy    float64        `json:"accuracy"`
	Daily       []DailyResult  `json:"daily"`
}

// Summary aggregates the stock reports of a run.
type Summary struct {
	Stocks            int     `json:"stocks"`
	TotalPredictions  int     `json:"total_predictions"`
	AverageMAE        float64 `json:"average_mae"`
	AverageMAPE       float64 `json:"average_mape"`
	AverageDirection  float64 `json:"average_direction_accuracy"`
	OverallAccuracy   float64 `json:"overall_accuracy"`
	LowestErrorSymbol string  `json:"lowest_error_symbol"`
	BestDirection     string  `json:"best_direction_symbol"`
}

// Evaluation is the full result of a simulation run.
type Evaluation struct {
	Period    string        `json:"period,omitempty"`
	Threshold float64       `json:"threshold"`
	Stocks    []StockReport `json:"stocks"`
	Summary   Summary       `json:"summary"`
}

// EvaluateSeries scores one series and builds its daily breakdown. Days with
// an absolute percentage error below threshold are marked OK.
func EvaluateSeries(s models.Series, threshold float64) (StockReport, error) {
	res, err := metrics.Compute(s.Predicted(), s.Actual())
	if err != nil {
		return StockReport{}, err
	}

	obs := s.Observations
	start, end := obs[0].Actual, obs[len(obs)-1].Actual
	if start == 0 {
		return StockReport{}, fmt.Errorf("total change: start price is zero: %w", metrics.ErrDivisionByZero)
	}
	report := StockReport{
		Symbol:      s.Symbol,
		Name:        s.Name,
		Currency:    s.Currency,
		StartPrice:  start,
		EndPrice:    end,
		TotalChange: (end/start - 1) * 100,
		Predictions: s.PredictionCount(),
		Metrics:     res,
		Accuracy:    metrics.Accuracy(res),
	}

	for _, o := range obs {
		if !o.Predicted.Valid {
			continue
		}
		diff := o.Predicted.Value - o.Actual
		pct := diff / o.Actual * 100
		report.Daily = append(report.Daily, DailyResult{
			Date:         o.Date,
			Predicted:    o.Predicted.Value,
			Actual:       o.Actual,
			Error:        diff,
			ErrorPercent: pct,
			OK:           math.Abs(pct) < threshold,
		})
	}

	return report, nil
}

// Summarize averages the reports. Ties for lowest error and best direction
// go to the earliest report.
func Summarize(reports []StockReport) Summary {
	sum := Summary{Stocks: len(reports)}
	if len(reports) == 0 {
		return sum
	}

	var maeSum, mapeSum, dirSum float64
	lowest, best := 0, 0
	for i, r := range reports {
		maeSum += r.Metrics.MAE
		mapeSum += r.Metrics.MAPE
		dirSum += r.Metrics.DirectionAccuracy
		sum.TotalPredictions += r.Predictions

		if r.Metrics.MAE < reports[lowest].Metrics.MAE {
			lowest = i
		}
		if r.Metrics.DirectionAccuracy > reports[best].Metrics.DirectionAccuracy {
			best = i
		}
	}

	n := float64(len(reports))
	sum.AverageMAE = maeSum / n
	sum.AverageMAPE = mapeSum / n
	sum.AverageDirection = dirSum / n
	sum.OverallAccuracy = 100 - sum.AverageMAPE
	sum.LowestErrorSymbol = reports[lowest].Symbol
	sum.BestDirection = reports[best].Symbol
	return sum
}

// Run evaluates every series and summarizes the results.
func Run(series []models.Series, threshold float64) (*Evaluation, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	ev := &Evaluation{
		Period:    period(series),
		Threshold: threshold,
		Stocks:    make([]StockReport, 0, len(series)),
	}
	for _, s := range series {
		report, err := EvaluateSeries(s, threshold)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", s.Symbol, err)
		}
		ev.Stocks = append(ev.Stocks, report)
	}
	ev.Summary = Summarize(ev.Stocks)
	return ev, nil
}

// period describes the span of predicted days across all series.
func period(series []models.Series) string {
	var first, last time.Time
	for _, s := range series {
		for _, o := range s.Observations {
			if !o.Predicted.Valid || o.Date.IsZero() {
				continue
			}
			if first.IsZero() || o.Date.Before(first) {
				first = o.Date
			}
			if o.Date.After(last) {
				last = o.Date
			}
		}
	}
	if first.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s - %s", first.Format("02 Jan 2006"), last.Format("02 Jan 2006"))
}
