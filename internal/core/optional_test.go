package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptFloat(t *testing.T) {
	v, ok := Some(2.5).Get()
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, ok = None().Get()
	assert.False(t, ok)

	assert.Equal(t, 1.0, None().Or(1))
	assert.Equal(t, 2.5, Some(2.5).Or(1))
	assert.Equal(t, "n/a", None().String())
}

func TestOptFloat_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   OptFloat
		want string
	}{
		{"defined", Some(1.25), "1.25"},
		{"zero is defined", Some(0), "0"},
		{"absent", None(), "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back OptFloat
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.in, back)
		})
	}
}
