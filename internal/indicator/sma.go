package indicator

import (
	"fmt"

	"github.com/newthinker/tradelab/internal/core"
)

// SMA calculates the Simple Moving Average of prices over window.
// The result is aligned with prices: positions before the window fills
// are absent, position i >= window-1 holds the mean of prices[i-window+1..i].
func SMA(prices []float64, window int) ([]core.OptFloat, error) {
	if window <= 0 {
		return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("window must be positive, got %d", window))
	}

	result := make([]core.OptFloat, len(prices))
	if len(prices) < window {
		return result, nil
	}

	// Compensated rolling sum
	var sum, comp float64
	add := func(v float64) {
		y := v - comp
		t := sum + y
		comp = (t - sum) - y
		sum = t
	}

	// Length of the run of identical values ending at i. A window that
	// lies entirely inside such a run averages to that value exactly.
	run := 0
	for i, p := range prices {
		if i > 0 && p == prices[i-1] {
			run++
		} else {
			run = 1
		}

		add(p)
		if i >= window {
			add(-prices[i-window])
		}
		if i < window-1 {
			continue
		}

		if run >= window {
			result[i] = core.Some(p)
		} else {
			result[i] = core.Some(sum / float64(window))
		}
	}

	return result, nil
}

// Values returns the defined entries of series in order.
func Values(series []core.OptFloat) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if f, ok := v.Get(); ok {
			out = append(out, f)
		}
	}
	return out
}
