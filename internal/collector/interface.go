// Package collector fetches daily OHLCV history from market data providers
// for loading into the ticker store.
package collector

import (
	"context"
	"time"

	"github.com/newthinker/tradelab/internal/core"
)

// Collector defines the interface for data collectors
type Collector interface {
	Name() string

	// FetchHistory returns daily bars for symbol between start and end,
	// oldest first. Bars with missing fields are dropped.
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.TickerInput, error)
}
