package simulation

import (
	"time"

	"github.com/Alias1177/PredictionMetrics/models"
)

// DefaultThreshold is the absolute percentage error under which a daily
// prediction is marked OK.
const DefaultThreshold = 0.5

type row struct {
	date      time.Time
	predicted models.Prediction
	actual    float64
}

func day(d int) time.Time {
	return time.Date(2025, time.October, d, 0, 0, 0, 0, time.UTC)
}

type stock struct {
	symbol string
	name   string
	rows   []row
}

// Simulation week 20-24 October 2025, anchored on the 18th close.
var stocks = []stock{
	{
		symbol: "BBCA.JK",
		name:   "Bank Central Asia",
		rows: []row{
			{day(18), models.NoPrediction(), 10250},
			{day(21), models.Predicted(10325), 10300},
			{day(22), models.Predicted(10350), 10325},
			{day(23), models.Predicted(10375), 10350},
			{day(24), models.Predicted(10400), 10375},
		},
	},
	{
		symbol: "BBRI.JK",
		name:   "Bank Rakyat Indonesia",
		rows: []row{
			{day(18), models.NoPrediction(), 5175},
			{day(21), models.Predicted(5200), 5225},
			{day(22), models.Predicted(5250), 5275},
			{day(23), models.Predicted(5300), 5325},
			{day(24), models.Predicted(5350), 5375},
		},
	},
	{
		symbol: "TLKM.JK",
		name:   "Telkom Indonesia",
		rows: []row{
			{day(18), models.NoPrediction(), 3890},
			{day(21), models.Predicted(3910), 3895},
			{day(22), models.Predicted(3920), 3930},
			{day(23), models.Predicted(3950), 3940},
			{day(24), models.Predicted(3960), 3950},
		},
	},
	{
		symbol: "ASII.JK",
		name:   "Astra International",
		rows: []row{
			{day(18), models.NoPrediction(), 5425},
			{day(21), models.Predicted(5450), 5475},
			{day(22), models.Predicted(5500), 5525},
			{day(23), models.Predicted(5575), 5600},
			{day(24), models.Predicted(5650), 5675},
		},
	},
	{
		symbol: "BMRI.JK",
		name:   "Bank Mandiri",
		rows: []row{
			{day(18), models.NoPrediction(), 6150},
			{day(21), models.Predicted(6200), 6225},
			{day(22), models.Predicted(6275), 6300},
			{day(23), models.Predicted(6350), 6375},
			{day(24), models.Predicted(6425), 6450},
		},
	},
}

// Dataset returns a fresh copy of the five-stock simulation table.
func Dataset() []models.Series {
	out := make([]models.Series, 0, len(stocks))
	for _, s := range stocks {
		series := models.Series{
			Symbol:       s.symbol,
			Name:         s.name,
			Currency:     "Rp",
			Observations: make([]models.Observation, len(s.rows)),
		}
		for i, r := range s.rows {
			series.Observations[i] = models.Observation{
				Date:      r.date,
				Predicted: r.predicted,
				Actual:    r.actual,
			}
		}
		out = append(out, series)
	}
	return out
}
