package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() TickerInput {
	return TickerInput{
		Datetime: time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC),
		Open:     100,
		High:     102,
		Low:      99,
		Close:    101,
		Volume:   5000,
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-01-01T09:30:00Z", time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC)},
		{"2023-01-01T09:30:00", time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC)},
		{"2023-01-01 09:30:00", time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC)},
		{"2023-01-01", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2023-01-01T10:30:00+01:00", time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTickerInput_UnmarshalJSON(t *testing.T) {
	var in TickerInput
	err := json.Unmarshal([]byte(`{"datetime":"2023-01-01T09:30:00","open":1,"high":2,"low":0.5,"close":1.5,"volume":10}`), &in)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC), in.Datetime)
	assert.Equal(t, 1.5, in.Close)
	assert.Equal(t, int64(10), in.Volume)

	err = json.Unmarshal([]byte(`{"datetime":"not a date"}`), &in)
	assert.Error(t, err)
}

func TestTickerInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TickerInput)
		fields []string
	}{
		{"valid", func(*TickerInput) {}, nil},
		{"missing datetime", func(in *TickerInput) { in.Datetime = time.Time{} }, []string{"datetime"}},
		{"zero open", func(in *TickerInput) { in.Open = 0 }, []string{"open"}},
		{"negative volume", func(in *TickerInput) { in.Volume = -1 }, []string{"volume"}},
		{"high below low", func(in *TickerInput) { in.High = 98.5 }, []string{"high", "high", "high"}},
		{"low above close", func(in *TickerInput) { in.Low = 101.5 }, []string{"low", "low"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var fe ValidationErrors
			require.True(t, errors.As(err, &fe))
			got := make([]string, len(fe))
			for i, f := range fe {
				got[i] = f.Field
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestTickerInput_Normalize(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	in := TickerInput{
		Datetime: time.Date(2023, 1, 1, 10, 0, 0, 0, loc),
		Open:     100.123456,
		High:     101.00004,
		Low:      99.99995,
		Close:    100.5,
		Volume:   1,
	}
	out := in.Normalize()
	assert.Equal(t, time.UTC, out.Datetime.Location())
	assert.Equal(t, 9, out.Datetime.Hour())
	assert.Equal(t, 100.1235, out.Open)
	assert.Equal(t, 101.0, out.High)
	assert.Equal(t, 100.0, out.Low)
	assert.Equal(t, 100.5, out.Close)
}
