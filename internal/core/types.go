package core

import "time"

// Action is the tag carried by a strategy signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// PricePoint is the slice of a ticker record the strategies consume.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// Signal annotates one price point with the moving averages seen there
// and the action derived from them.
type Signal struct {
	Datetime time.Time `json:"datetime"`
	Price    float64   `json:"price"`
	ShortMA  OptFloat  `json:"short_ma"`
	LongMA   OptFloat  `json:"long_ma"`
	Action   Action    `json:"signal"`
}

// Ticker is a persisted OHLCV record.
type Ticker struct {
	ID        int64     `json:"id"`
	Datetime  time.Time `json:"datetime"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	CreatedAt time.Time `json:"created_at"`
}

// PricePoint returns the closing price at the record's timestamp.
func (t Ticker) PricePoint() PricePoint {
	return PricePoint{Time: t.Datetime, Close: t.Close}
}

// Input returns the record without its storage metadata.
func (t Ticker) Input() TickerInput {
	return TickerInput{
		Datetime: t.Datetime,
		Open:     t.Open,
		High:     t.High,
		Low:      t.Low,
		Close:    t.Close,
		Volume:   t.Volume,
	}
}

// PricePoints extracts the price points of records, keeping their order.
func PricePoints(records []Ticker) []PricePoint {
	points := make([]PricePoint, len(records))
	for i, r := range records {
		points[i] = r.PricePoint()
	}
	return points
}
