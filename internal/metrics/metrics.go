// Package metrics scores a forecast against the prices that were actually
// observed. All functions are pure and safe for concurrent use.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alias1177/PredictionMetrics/models"
)

var (
	// ErrDivisionByZero is returned when a paired actual value is zero and
	// the percentage error cannot be computed.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInsufficientData is returned when fewer than two predictions are
	// present, leaving direction undefined.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidInput is returned when the input sequences are malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorMetrics holds the magnitude-based error statistics.
type ErrorMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"` // percent
}

// Result holds all four accuracy statistics for a forecast.
type Result struct {
	MAE               float64 `json:"mae"`
	RMSE              float64 `json:"rmse"`
	MAPE              float64 `json:"mape"`               // percent
	DirectionAccuracy float64 `json:"direction_accuracy"` // percent, 0-100
}

// Errors returns the magnitude statistics of r.
func (r Result) Errors() ErrorMetrics {
	return ErrorMetrics{MAE: r.MAE, RMSE: r.RMSE, MAPE: r.MAPE}
}

// Accuracy returns 100 - MAPE, the headline accuracy figure of a report.
func Accuracy(r Result) float64 {
	return 100 - r.MAPE
}

// Compute returns MAE, RMSE, MAPE and direction accuracy over the steps that
// carry a prediction. Steps without one are left out of every statistic.
func Compute(predicted []models.Prediction, actual []float64) (Result, error) {
	p, a, err := paired(predicted, actual)
	if err != nil {
		return Result{}, err
	}

	em, err := errorMetrics(p, a)
	if err != nil {
		return Result{}, err
	}

	dir, err := directionAccuracy(p, a)
	if err != nil {
		return Result{}, err
	}

	return Result{
		MAE:               em.MAE,
		RMSE:              em.RMSE,
		MAPE:              em.MAPE,
		DirectionAccuracy: dir,
	}, nil
}

// ComputeErrors is Compute without direction accuracy. It succeeds with a
// single present prediction.
func ComputeErrors(predicted []models.Prediction, actual []float64) (ErrorMetrics, error) {
	p, a, err := paired(predicted, actual)
	if err != nil {
		return ErrorMetrics{}, err
	}
	return errorMetrics(p, a)
}

// DirectionAccuracy returns the percentage of consecutive present predictions
// whose move has the same sign as the actual move over the same steps.
func DirectionAccuracy(predicted []models.Prediction, actual []float64) (float64, error) {
	p, a, err := paired(predicted, actual)
	if err != nil {
		return 0, err
	}
	return directionAccuracy(p, a)
}

// paired checks the input and keeps only the steps with a prediction, in order.
func paired(predicted []models.Prediction, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("%w: %d predictions for %d actual values", ErrInvalidInput, len(predicted), len(actual))
	}
	if len(actual) < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 observations, got %d", ErrInvalidInput, len(actual))
	}

	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i, pred := range predicted {
		if !pred.Valid {
			continue
		}
		p = append(p, pred.Value)
		a = append(a, actual[i])
	}

	if len(p) == 0 {
		return nil, nil, fmt.Errorf("%w: no predictions present", ErrInvalidInput)
	}
	return p, a, nil
}

func errorMetrics(p, a []float64) (ErrorMetrics, error) {
	var absSum, sqSum, pctSum float64
	for i := range p {
		if a[i] == 0 {
			return ErrorMetrics{}, fmt.Errorf("percentage error at paired step %d: actual is zero: %w", i, ErrDivisionByZero)
		}
		diff := p[i] - a[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		pctSum += math.Abs(diff / a[i])
	}

	n := float64(len(p))
	return ErrorMetrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
		MAPE: pctSum / n * 100,
	}, nil
}

// directionAccuracy buckets each step change as rising (> 0) or not (<= 0);
// a flat step therefore matches a falling one.
func directionAccuracy(p, a []float64) (float64, error) {
	if len(p) < 2 {
		return 0, fmt.Errorf("direction needs 2 predictions, got %d: %w", len(p), ErrInsufficientData)
	}

	matches := 0
	for i := 1; i < len(p); i++ {
		predUp := p[i]-p[i-1] > 0
		actualUp := a[i]-a[i-1] > 0
		if predUp == actualUp {
			matches++
		}
	}
	return float64(matches) / float64(len(p)-1) * 100, nil
}
