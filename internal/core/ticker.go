package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PricePrecision is the number of decimal places prices are stored with.
const PricePrecision = 4

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses RFC 3339 timestamps as well as the zone-less ISO
// forms clients commonly send. Zone-less values are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// TickerInput is an OHLCV record as submitted for ingest.
type TickerInput struct {
	Datetime time.Time `json:"datetime"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
}

// UnmarshalJSON decodes the record, accepting any layout ParseTimestamp does.
func (in *TickerInput) UnmarshalJSON(data []byte) error {
	type alias TickerInput
	aux := struct {
		Datetime string `json:"datetime"`
		*alias
	}{alias: (*alias)(in)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Datetime == "" {
		in.Datetime = time.Time{}
		return nil
	}
	t, err := ParseTimestamp(aux.Datetime)
	if err != nil {
		return err
	}
	in.Datetime = t
	return nil
}

// FieldError describes one rejected field of a record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every field error found in a record.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// Validate checks the OHLC invariants. The returned error wraps
// ErrValidation and carries a ValidationErrors cause.
func (in TickerInput) Validate() error {
	var errs ValidationErrors

	if in.Datetime.IsZero() {
		errs = append(errs, FieldError{"datetime", "Datetime is required"})
	}
	for _, f := range []struct {
		name, label string
		v           float64
	}{
		{"open", "Opening", in.Open},
		{"high", "High", in.High},
		{"low", "Low", in.Low},
		{"close", "Closing", in.Close},
	} {
		if !(f.v > 0) {
			errs = append(errs, FieldError{f.name, f.label + " price must be positive"})
		}
	}
	if in.Volume < 0 {
		errs = append(errs, FieldError{"volume", "Volume must be non-negative"})
	}

	if in.Low > 0 && in.High < in.Low {
		errs = append(errs, FieldError{"high", "High price cannot be less than low price"})
	}
	if in.Open > 0 && in.High < in.Open {
		errs = append(errs, FieldError{"high", "High price cannot be less than open price"})
	}
	if in.Close > 0 && in.High < in.Close {
		errs = append(errs, FieldError{"high", "High price cannot be less than close price"})
	}
	if in.Open > 0 && in.Low > in.Open {
		errs = append(errs, FieldError{"low", "Low price cannot be greater than open price"})
	}
	if in.Close > 0 && in.Low > in.Close {
		errs = append(errs, FieldError{"low", "Low price cannot be greater than close price"})
	}

	if len(errs) > 0 {
		return WrapError(ErrValidation, errs)
	}
	return nil
}

// Normalize returns the record in storage form: UTC timestamp and prices
// rounded to PricePrecision decimal places.
func (in TickerInput) Normalize() TickerInput {
	round := func(v float64) float64 {
		f, _ := decimal.NewFromFloat(v).Round(PricePrecision).Float64()
		return f
	}
	return TickerInput{
		Datetime: in.Datetime.UTC(),
		Open:     round(in.Open),
		High:     round(in.High),
		Low:      round(in.Low),
		Close:    round(in.Close),
		Volume:   in.Volume,
	}
}
