package metrics

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/Alias1177/PredictionMetrics/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preds(values ...float64) []models.Prediction {
	out := make([]models.Prediction, len(values))
	for i, v := range values {
		out[i] = models.Predicted(v)
	}
	return out
}

func withLeadingGap(values ...float64) []models.Prediction {
	return append([]models.Prediction{models.NoPrediction()}, preds(values...)...)
}

func TestComputeBBCAScenario(t *testing.T) {
	predicted := withLeadingGap(10325, 10350, 10375, 10400)
	actual := []float64{10250, 10300, 10325, 10350, 10375}

	got, err := Compute(predicted, actual)
	require.NoError(t, err)

	assert.InDelta(t, 25.0, got.MAE, 1e-9)
	assert.InDelta(t, 25.0, got.RMSE, 1e-9)
	assert.InDelta(t, 0.24184, got.MAPE, 1e-5)
	assert.InDelta(t, 100.0, got.DirectionAccuracy, 1e-9)
	assert.InDelta(t, 99.75816, Accuracy(got), 1e-5)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		predicted []models.Prediction
		actual    []float64
		want      Result
	}{
		{
			name:      "mixed errors",
			predicted: withLeadingGap(3910, 3920, 3950, 3960),
			actual:    []float64{3890, 3895, 3930, 3940, 3950},
			want: Result{
				MAE:               11.25,
				RMSE:              math.Sqrt(525.0 / 4),
				MAPE:              0.286633,
				DirectionAccuracy: 100,
			},
		},
		{
			name:      "opposite moves",
			predicted: preds(10, 12, 11),
			actual:    []float64{10, 9, 10},
			want: Result{
				MAE:               (0 + 3 + 1) / 3.0,
				RMSE:              math.Sqrt((0 + 9 + 1) / 3.0),
				MAPE:              (0 + 3.0/9 + 1.0/10) / 3 * 100,
				DirectionAccuracy: 0,
			},
		},
		{
			name:      "gap in the middle is skipped",
			predicted: []models.Prediction{models.Predicted(100), models.NoPrediction(), models.Predicted(110)},
			actual:    []float64{100, 50, 105},
			want: Result{
				MAE:               2.5,
				RMSE:              math.Sqrt(12.5),
				MAPE:              5.0 / 105 / 2 * 100,
				DirectionAccuracy: 100,
			},
		},
		{
			name:      "flat actual does not match a predicted rise",
			predicted: preds(1, 2, 3),
			actual:    []float64{1, 1, 2},
			want: Result{
				MAE:               (0 + 1 + 1) / 3.0,
				RMSE:              math.Sqrt(2 / 3.0),
				MAPE:              (0 + 100 + 50) / 3.0,
				DirectionAccuracy: 50,
			},
		},
		{
			name:      "flat actual matches a predicted fall",
			predicted: preds(5, 4),
			actual:    []float64{5, 5},
			want: Result{
				MAE:               0.5,
				RMSE:              math.Sqrt(0.5),
				MAPE:              10,
				DirectionAccuracy: 100,
			},
		},
		{
			name:      "valid zero prediction is not absent",
			predicted: preds(0, 2),
			actual:    []float64{1, 2},
			want: Result{
				MAE:               0.5,
				RMSE:              math.Sqrt(0.5),
				MAPE:              50,
				DirectionAccuracy: 100,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.predicted, tt.actual)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.MAE, got.MAE, 1e-6, "MAE")
			assert.InDelta(t, tt.want.RMSE, got.RMSE, 1e-6, "RMSE")
			assert.InDelta(t, tt.want.MAPE, got.MAPE, 1e-6, "MAPE")
			assert.InDelta(t, tt.want.DirectionAccuracy, got.DirectionAccuracy, 1e-9, "DirectionAccuracy")
		})
	}
}

func TestComputeErrorsAndPreconditions(t *testing.T) {
	tests := []struct {
		name      string
		predicted []models.Prediction
		actual    []float64
		wantErr   error
	}{
		{
			name:      "length mismatch",
			predicted: preds(1, 2),
			actual:    []float64{1, 2, 3},
			wantErr:   ErrInvalidInput,
		},
		{
			name:      "single observation",
			predicted: preds(1),
			actual:    []float64{1},
			wantErr:   ErrInvalidInput,
		},
		{
			name:      "no predictions present",
			predicted: []models.Prediction{models.NoPrediction(), models.NoPrediction()},
			actual:    []float64{1, 2},
			wantErr:   ErrInvalidInput,
		},
		{
			name:      "zero actual",
			predicted: withLeadingGap(10, 11, 12),
			actual:    []float64{9, 10, 0, 12},
			wantErr:   ErrDivisionByZero,
		},
		{
			name:      "zero actual wins over insufficient data",
			predicted: withLeadingGap(1),
			actual:    []float64{5, 0},
			wantErr:   ErrDivisionByZero,
		},
		{
			name:      "one present prediction",
			predicted: withLeadingGap(10325),
			actual:    []float64{10250, 10300},
			wantErr:   ErrInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.predicted, tt.actual)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestZeroActualOutsidePredictionsIsIgnored(t *testing.T) {
	got, err := Compute(withLeadingGap(10, 11), []float64{0, 10, 11})
	require.NoError(t, err)
	assert.Zero(t, got.MAE)
	assert.Zero(t, got.MAPE)
}

func TestTwoPointBoundary(t *testing.T) {
	predicted := withLeadingGap(10325)
	actual := []float64{10250, 10300}

	em, err := ComputeErrors(predicted, actual)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, em.MAE, 1e-9)
	assert.InDelta(t, 25.0, em.RMSE, 1e-9)
	assert.InDelta(t, 25.0/10300*100, em.MAPE, 1e-9)

	_, err = DirectionAccuracy(predicted, actual)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestComputeErrorsMatchesCompute(t *testing.T) {
	predicted := withLeadingGap(5200, 5250, 5300, 5350)
	actual := []float64{5175, 5225, 5275, 5325, 5375}

	full, err := Compute(predicted, actual)
	require.NoError(t, err)
	em, err := ComputeErrors(predicted, actual)
	require.NoError(t, err)
	dir, err := DirectionAccuracy(predicted, actual)
	require.NoError(t, err)

	assert.Equal(t, full.Errors(), em)
	assert.Equal(t, full.DirectionAccuracy, dir)
}

// randomInput returns a positive price walk and a noisy forecast of it with
// the first step left unpredicted.
func randomInput(r *rand.Rand, n int) ([]models.Prediction, []float64) {
	actual := make([]float64, n)
	predicted := make([]models.Prediction, n)
	price := 50 + r.Float64()*100
	for i := range actual {
		price += r.NormFloat64()
		if price < 1 {
			price = 1
		}
		actual[i] = price
		if i > 0 {
			predicted[i] = models.Predicted(price + r.NormFloat64()*2)
		}
	}
	return predicted, actual
}

func TestMAENeverExceedsRMSE(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	for i := 0; i < 500; i++ {
		predicted, actual := randomInput(r, 3+r.IntN(40))
		got, err := Compute(predicted, actual)
		require.NoError(t, err)
		assert.LessOrEqual(t, got.MAE, got.RMSE+1e-12, "iteration %d", i)
		assert.GreaterOrEqual(t, got.MAPE, 0.0)
		assert.GreaterOrEqual(t, got.DirectionAccuracy, 0.0)
		assert.LessOrEqual(t, got.DirectionAccuracy, 100.0)
	}
}

func TestEqualAbsoluteErrorsGiveEqualMAEAndRMSE(t *testing.T) {
	got, err := Compute(preds(11, 9, 13, 11), []float64{10, 10, 12, 12})
	require.NoError(t, err)
	assert.InDelta(t, got.MAE, got.RMSE, 1e-12)
}

func TestScaleInvariance(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 11))
	for i := 0; i < 100; i++ {
		predicted, actual := randomInput(r, 10)
		k := 0.5 + r.Float64()*20

		scaledPred := make([]models.Prediction, len(predicted))
		scaledActual := make([]float64, len(actual))
		for j := range predicted {
			if predicted[j].Valid {
				scaledPred[j] = models.Predicted(predicted[j].Value * k)
			}
			scaledActual[j] = actual[j] * k
		}

		base, err := Compute(predicted, actual)
		require.NoError(t, err)
		scaled, err := Compute(scaledPred, scaledActual)
		require.NoError(t, err)

		assert.InDelta(t, base.MAPE, scaled.MAPE, 1e-9)
		assert.Equal(t, base.DirectionAccuracy, scaled.DirectionAccuracy)
		assert.InEpsilon(t, base.MAE*k, scaled.MAE, 1e-9)
		assert.InEpsilon(t, base.RMSE*k, scaled.RMSE, 1e-9)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	predicted, actual := randomInput(rand.New(rand.NewPCG(1, 2)), 25)

	first, err := Compute(predicted, actual)
	require.NoError(t, err)
	second, err := Compute(predicted, actual)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(first.MAE), math.Float64bits(second.MAE))
	assert.Equal(t, math.Float64bits(first.RMSE), math.Float64bits(second.RMSE))
	assert.Equal(t, math.Float64bits(first.MAPE), math.Float64bits(second.MAPE))
	assert.Equal(t, math.Float64bits(first.DirectionAccuracy), math.Float64bits(second.DirectionAccuracy))
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	predicted := withLeadingGap(10325, 10350)
	actual := []float64{10250, 10300, 10325}
	predCopy := append([]models.Prediction(nil), predicted...)
	actualCopy := append([]float64(nil), actual...)

	_, err := Compute(predicted, actual)
	require.NoError(t, err)
	assert.Equal(t, predCopy, predicted)
	assert.Equal(t, actualCopy, actual)
}

func TestComputeConcurrent(t *testing.T) {
	predicted, actual := randomInput(rand.New(rand.NewPCG(9, 9)), 50)
	want, err := Compute(predicted, actual)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Compute(predicted, actual)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
