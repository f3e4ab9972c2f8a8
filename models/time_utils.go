package models

import "time"

// intervalMinutes maps Twelve Data intervals to their length in minutes.
var intervalMinutes = map[string]int{
	"1min":   1,
	"5min":   5,
	"15min":  15,
	"30min":  30,
	"45min":  45,
	"1h":     60,
	"2h":     2 * 60,
	"4h":     4 * 60,
	"8h":     8 * 60,
	"1day":   24 * 60,
	"1week":  7 * 24 * 60,
	"1month": 30 * 24 * 60,
}

// CandlesForDays estimates how many candles of interval cover days, rounded
// up by 10%. It returns 0 for an unknown interval or a non-positive span.
func CandlesForDays(interval string, days int) int {
	minutes, ok := intervalMinutes[interval]
	if !ok || days <= 0 {
		return 0
	}
	n := max(days*24*60/minutes, 1)
	return n + (n+9)/10
}

// candleLayouts are the datetime formats Twelve Data returns, intraday first.
var candleLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCandleTime parses a Twelve Data datetime in UTC.
func ParseCandleTime(s string) (time.Time, error) {
	var err error
	for _, layout := range candleLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
