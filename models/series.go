package models

import (
	"encoding/json"
	"time"
)

// Prediction is a forecast value that may be absent, e.g. for the first
// observation of a series where no earlier data exists to forecast from.
// It follows the shape of sql.NullFloat64 so a valid zero is never
// mistaken for a missing value.
type Prediction struct {
	Value float64
	Valid bool
}

func Predicted(v float64) Prediction {
	return Prediction{Value: v, Valid: true}
}

func NoPrediction() Prediction {
	return Prediction{}
}

// MarshalJSON encodes an absent prediction as null.
func (p Prediction) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

func (p *Prediction) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Prediction{}
		return nil
	}
	if err := json.Unmarshal(data, &p.Value); err != nil {
		return err
	}
	p.Valid = true
	return nil
}

// Observation pairs the forecast made for a step with the price observed at it.
type Observation struct {
	Date      time.Time  `json:"date"`
	Predicted Prediction `json:"predicted"`
	Actual    float64    `json:"actual"`
}

// Series is an ordered run of observations for one instrument.
type Series struct {
	Symbol       string        `json:"symbol"`
	Name         string        `json:"name,omitempty"`
	Currency     string        `json:"currency,omitempty"`
	Observations []Observation `json:"observations"`
}

func (s Series) Predicted() []Prediction {
	out := make([]Prediction, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Predicted
	}
	return out
}

func (s Series) Actual() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Actual
	}
	return out
}

// PredictionCount returns how many observations carry a forecast.
func (s Series) PredictionCount() int {
	n := 0
	for _, o := range s.Observations {
		if o.Predicted.Valid {
			n++
		}
	}
	return n
}
