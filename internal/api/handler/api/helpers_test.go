package api

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/tradelab/internal/backtest"
	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/ingest"
	"github.com/newthinker/tradelab/internal/storage/ticker"
	"github.com/newthinker/tradelab/internal/strategy"
	"github.com/newthinker/tradelab/internal/strategy/ma_crossover"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newService() *ingest.Service {
	return ingest.NewService(ticker.NewMemoryStore(), nil, nil, nil)
}

// seed stores one daily record per close price.
func seed(t *testing.T, svc *ingest.Service, closes ...float64) {
	t.Helper()
	in := make([]core.TickerInput, len(closes))
	for i, c := range closes {
		in[i] = core.TickerInput{
			Datetime: day0.AddDate(0, 0, i),
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   1000,
		}
	}
	_, err := svc.CreateMany(context.Background(), ingest.SourceSeed, in)
	require.NoError(t, err)
}

func newStrategyHandler(svc *ingest.Service) *StrategyHandler {
	engine := strategy.NewEngine()
	engine.Register(ma_crossover.Name, ma_crossover.Factory)
	return NewStrategyHandler(
		backtest.New(svc.Store()),
		engine,
		ma_crossover.Name,
		map[string]any{"short_window": 1, "long_window": 2},
	)
}

func tickerJSON(datetime string, open, high, low, close float64, volume int) string {
	return fmt.Sprintf(`{"datetime":%q,"open":%g,"high":%g,"low":%g,"close":%g,"volume":%d}`,
		datetime, open, high, low, close, volume)
}

func jsonArray(items ...string) string {
	return "[" + strings.Join(items, ",") + "]"
}
