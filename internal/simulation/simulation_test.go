package simulation

import (
	"testing"

	"github.com/Alias1177/PredictionMetrics/internal/metrics"
	"github.com/Alias1177/PredictionMetrics/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset(t *testing.T) {
	data := Dataset()
	require.Len(t, data, 5)

	symbols := make([]string, len(data))
	for i, s := range data {
		symbols[i] = s.Symbol
		require.Len(t, s.Observations, 5, s.Symbol)
		assert.False(t, s.Observations[0].Predicted.Valid, "%s starts without a forecast", s.Symbol)
		assert.Equal(t, 4, s.PredictionCount(), s.Symbol)
		assert.Equal(t, "Rp", s.Currency)
	}
	assert.Equal(t, []string{"BBCA.JK", "BBRI.JK", "TLKM.JK", "ASII.JK", "BMRI.JK"}, symbols)

	for _, s := range data {
		for i, o := range s.Observations {
			assert.False(t, o.Date.IsZero(), "%s observation %d has a date", s.Symbol, i)
		}
		assert.Equal(t, "2025-10-18", s.Observations[0].Date.Format("2006-01-02"))
		assert.Equal(t, "2025-10-24", s.Observations[4].Date.Format("2006-01-02"))
	}

	// Callers get their own copy.
	data[0].Observations[1].Actual = 1
	assert.Equal(t, 10300.0, Dataset()[0].Observations[1].Actual)
}

func TestEvaluateSeries(t *testing.T) {
	tlkm := Dataset()[2]

	report, err := EvaluateSeries(tlkm, DefaultThreshold)
	require.NoError(t, err)

	assert.Equal(t, "TLKM.JK", report.Symbol)
	assert.Equal(t, 3890.0, report.StartPrice)
	assert.Equal(t, 3950.0, report.EndPrice)
	assert.InDelta(t, (3950.0/3890.0-1)*100, report.TotalChange, 1e-9)
	assert.Equal(t, 4, report.Predictions)
	assert.InDelta(t, 11.25, report.Metrics.MAE, 1e-9)
	assert.InDelta(t, 100.0, report.Metrics.DirectionAccuracy, 1e-9)
	assert.InDelta(t, 100-report.Metrics.MAPE, report.Accuracy, 1e-12)

	require.Len(t, report.Daily, 4)
	wantErrors := []float64{15, -10, 10, 10}
	for i, d := range report.Daily {
		assert.Equal(t, wantErrors[i], d.Error)
		assert.True(t, d.OK, "day %d within threshold", i)
	}
	assert.Equal(t, "2025-10-21", report.Daily[0].Date.Format("2006-01-02"))
}

func TestEvaluateSeriesThreshold(t *testing.T) {
	bbri := Dataset()[1]

	// Every BBRI error is -25 on prices near 5200-5375, about 0.47-0.48%.
	loose, err := EvaluateSeries(bbri, 0.5)
	require.NoError(t, err)
	tight, err := EvaluateSeries(bbri, 0.3)
	require.NoError(t, err)

	for i := range loose.Daily {
		assert.True(t, loose.Daily[i].OK)
		assert.False(t, tight.Daily[i].OK)
	}
}

func TestEvaluateSeriesPropagatesMetricErrors(t *testing.T) {
	s := models.Series{
		Symbol: "ZERO",
		Observations: []models.Observation{
			{Actual: 10},
			{Predicted: models.Predicted(5), Actual: 0},
			{Predicted: models.Predicted(6), Actual: 7},
		},
	}
	_, err := EvaluateSeries(s, DefaultThreshold)
	assert.ErrorIs(t, err, metrics.ErrDivisionByZero)

	_, err = Run([]models.Series{Dataset()[0], s}, DefaultThreshold)
	require.Error(t, err)
	assert.ErrorIs(t, err, metrics.ErrDivisionByZero)
	assert.Contains(t, err.Error(), "ZERO")
}

func TestEvaluateSeriesZeroStartPrice(t *testing.T) {
	// The zero actual has no prediction, so the metrics themselves succeed.
	s := models.Series{
		Symbol: "NEW",
		Observations: []models.Observation{
			{Actual: 0},
			{Predicted: models.Predicted(9), Actual: 10},
			{Predicted: models.Predicted(12), Actual: 11},
		},
	}
	_, err := metrics.Compute(s.Predicted(), s.Actual())
	require.NoError(t, err)

	_, err = EvaluateSeries(s, DefaultThreshold)
	assert.ErrorIs(t, err, metrics.ErrDivisionByZero)

	_, err = Run([]models.Series{s}, DefaultThreshold)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NEW")
}

func TestRunDataset(t *testing.T) {
	ev, err := Run(Dataset(), DefaultThreshold)
	require.NoError(t, err)

	require.Len(t, ev.Stocks, 5)
	assert.Equal(t, "21 Oct 2025 - 24 Oct 2025", ev.Period)
	assert.Equal(t, DefaultThreshold, ev.Threshold)

	sum := ev.Summary
	assert.Equal(t, 5, sum.Stocks)
	assert.Equal(t, 20, sum.TotalPredictions)
	assert.InDelta(t, (25+25+11.25+25+25)/5.0, sum.AverageMAE, 1e-9)
	assert.InDelta(t, 100.0, sum.AverageDirection, 1e-9)
	assert.InDelta(t, 100-sum.AverageMAPE, sum.OverallAccuracy, 1e-12)
	assert.InDelta(t, 0.36876, sum.AverageMAPE, 1e-4)
	assert.Equal(t, "TLKM.JK", sum.LowestErrorSymbol)
	assert.Equal(t, "BBCA.JK", sum.BestDirection, "ties resolve to the first stock")
}

func TestRunDefaultsThreshold(t *testing.T) {
	ev, err := Run(Dataset()[:1], 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, ev.Threshold)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarizePicksBest(t *testing.T) {
	reports := []StockReport{
		{Symbol: "A", Predictions: 3, Metrics: metrics.Result{MAE: 3, MAPE: 1, DirectionAccuracy: 50}},
		{Symbol: "B", Predictions: 3, Metrics: metrics.Result{MAE: 1, MAPE: 2, DirectionAccuracy: 50}},
		{Symbol: "C", Predictions: 2, Metrics: metrics.Result{MAE: 2, MAPE: 3, DirectionAccuracy: 100}},
	}
	sum := Summarize(reports)
	assert.Equal(t, "B", sum.LowestErrorSymbol)
	assert.Equal(t, "C", sum.BestDirection)
	assert.Equal(t, 8, sum.TotalPredictions)
	assert.InDelta(t, 2.0, sum.AverageMAE, 1e-12)
	assert.InDelta(t, 98.0, sum.OverallAccuracy, 1e-12)
}
