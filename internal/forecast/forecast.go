// Package forecast holds baseline one-step-ahead forecasters. Each forecaster
// predicts step i from actual[:i], so the first step never has a forecast.
package forecast

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"github.com/Alias1177/PredictionMetrics/models"
)

const (
	MethodNaive = "naive"
	MethodDrift = "drift"
	MethodEMA   = "ema"
	MethodMock  = "mock"
)

// Methods lists the forecaster names accepted by New.
var Methods = []string{MethodNaive, MethodDrift, MethodEMA, MethodMock}

type Forecaster interface {
	Name() string
	Forecast(actual []float64) []models.Prediction
}

// New builds a forecaster by name.
func New(method string, emaPeriod int, seed uint64) (Forecaster, error) {
	switch strings.ToLower(method) {
	case MethodNaive:
		return Naive{}, nil
	case MethodDrift:
		return Drift{}, nil
	case MethodEMA:
		if emaPeriod < 1 {
			return nil, fmt.Errorf("ema period must be positive, got %d", emaPeriod)
		}
		return EMA{Period: emaPeriod}, nil
	case MethodMock:
		return Mock{Seed: seed}, nil
	default:
		return nil, fmt.Errorf("unknown forecast method %q (want one of %s)", method, strings.Join(Methods, ", "))
	}
}

// ForSymbol returns the forecaster to run on symbol. Forecasters with
// per-symbol state derive it here; the rest are returned unchanged.
func ForSymbol(f Forecaster, symbol string) Forecaster {
	if s, ok := f.(interface{ ForSymbol(string) Forecaster }); ok {
		return s.ForSymbol(symbol)
	}
	return f
}

// oneStep applies next to every prefix actual[:i] for i >= 1.
func oneStep(actual []float64, next func(history []float64) float64) []models.Prediction {
	out := make([]models.Prediction, len(actual))
	for i := 1; i < len(actual); i++ {
		out[i] = models.Predicted(next(actual[:i]))
	}
	return out
}

// Naive predicts the previous actual value.
type Naive struct{}

func (Naive) Name() string { return MethodNaive }

func (Naive) Forecast(actual []float64) []models.Prediction {
	return oneStep(actual, func(h []float64) float64 {
		return h[len(h)-1]
	})
}

// Drift extends the previous value by the average step seen so far.
type Drift struct{}

func (Drift) Name() string { return MethodDrift }

func (Drift) Forecast(actual []float64) []models.Prediction {
	return oneStep(actual, func(h []float64) float64 {
		last := h[len(h)-1]
		if len(h) < 2 {
			return last
		}
		return last + (last-h[0])/float64(len(h)-1)
	})
}

// EMA predicts the exponential moving average of the history.
type EMA struct {
	Period int
}

func (e EMA) Name() string { return fmt.Sprintf("%s(%d)", MethodEMA, e.Period) }

func (e EMA) Forecast(actual []float64) []models.Prediction {
	return oneStep(actual, func(h []float64) float64 {
		return emaFromPrices(h, e.Period)
	})
}

func emaFromPrices(prices []float64, period int) float64 {
	if len(prices) < period {
		return prices[len(prices)-1] // Return last price if not enough data
	}

	// Seed with the simple moving average of the first period
	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}

	return ema
}

// Mock perturbs the previous value by a uniform factor in [Low, High), like
// the placeholder prediction service. Zero bounds default to -3% and +5%.
// The same seed always yields the same forecast.
type Mock struct {
	Seed      uint64
	Low, High float64
}

func (m Mock) Name() string { return MethodMock }

// ForSymbol mixes the symbol into the seed so each symbol draws its own
// reproducible noise.
func (m Mock) ForSymbol(symbol string) Forecaster {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	m.Seed ^= h.Sum64()
	return m
}

func (m Mock) Forecast(actual []float64) []models.Prediction {
	low, high := m.Low, m.High
	if low == 0 && high == 0 {
		low, high = -0.03, 0.05
	}
	r := rand.New(rand.NewPCG(m.Seed, m.Seed^0x9e3779b97f4a7c15))
	return oneStep(actual, func(h []float64) float64 {
		return h[len(h)-1] * (1 + low + r.Float64()*(high-low))
	})
}
