package models

import "context"

type CandleClient interface {
	GetCandles(ctx context.Context, symbol, interval string, count int) ([]Candle, error)
}
