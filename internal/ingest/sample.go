package ingest

import (
	"math"
	"time"

	"github.com/newthinker/tradelab/internal/core"
	"github.com/shopspring/decimal"
)

// SampleStart is the first timestamp of the generated sample series.
var SampleStart = time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC)

// DefaultSampleDays is the default length of the sample series.
const DefaultSampleDays = 50

// SampleSeries generates n daily records starting at start: an oscillation
// with a period of five days on top of a slight upward trend, volume
// growing by 50000 a day. Prices are rounded to cents.
func SampleSeries(start time.Time, n int) []core.TickerInput {
	const basePrice = 100.0

	out := make([]core.TickerInput, n)
	for i := range out {
		change := float64(i%5-2) * 0.5
		price := basePrice + change + float64(i)*0.1

		out[i] = core.TickerInput{
			Datetime: start.AddDate(0, 0, i),
			Open:     cents(price),
			High:     cents(price + math.Abs(change) + 1),
			Low:      cents(price - math.Abs(change) - 0.5),
			Close:    cents(price + change*0.5),
			Volume:   int64(1000000 + i*50000),
		}
	}
	return out
}

func cents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
