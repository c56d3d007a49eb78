package core

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// OptFloat is a float64 that may be absent. The zero value is absent.
// Moving averages use it for positions where the window has not filled.
type OptFloat struct {
	value float64
	valid bool
}

// Some returns a defined OptFloat holding v.
func Some(v float64) OptFloat {
	return OptFloat{value: v, valid: true}
}

// None returns an absent OptFloat.
func None() OptFloat {
	return OptFloat{}
}

// Get returns the value and whether it is defined.
func (o OptFloat) Get() (float64, bool) {
	return o.value, o.valid
}

// Valid reports whether the value is defined.
func (o OptFloat) Valid() bool {
	return o.valid
}

// Or returns the value, or def when absent.
func (o OptFloat) Or(def float64) float64 {
	if !o.valid {
		return def
	}
	return o.value
}

func (o OptFloat) String() string {
	if !o.valid {
		return "n/a"
	}
	return strconv.FormatFloat(o.value, 'f', -1, 64)
}

// MarshalJSON encodes an absent value as null.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON accepts a number or null.
func (o *OptFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
