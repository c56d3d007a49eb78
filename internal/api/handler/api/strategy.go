package api

import (
	"maps"
	"net/http"

	"github.com/newthinker/tradelab/internal/api/response"
	"github.com/newthinker/tradelab/internal/backtest"
	"github.com/newthinker/tradelab/internal/strategy"
)

// StrategyHandler evaluates the configured strategy over stored data.
type StrategyHandler struct {
	backtester *backtest.Backtester
	strategies *strategy.Engine
	name       string
	params     map[string]any
}

// NewStrategyHandler creates a new strategy handler. params holds the
// defaults used when a request names no windows.
func NewStrategyHandler(
	backtester *backtest.Backtester,
	strategies *strategy.Engine,
	name string,
	params map[string]any,
) *StrategyHandler {
	return &StrategyHandler{
		backtester: backtester,
		strategies: strategies,
		name:       name,
		params:     params,
	}
}

// Performance handles GET /strategy/performance?short_window=&long_window=.
func (h *StrategyHandler) Performance(w http.ResponseWriter, r *http.Request) {
	params := maps.Clone(h.params)
	if params == nil {
		params = make(map[string]any, 2)
	}

	q := r.URL.Query()
	for _, key := range []string{"short_window", "long_window"} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := queryInt(raw, key, 0)
		if err != nil {
			response.Error(w, err)
			return
		}
		params[key] = n
	}

	strat, err := h.strategies.New(h.name, strategy.Config{Params: params})
	if err != nil {
		response.Error(w, err)
		return
	}

	result, err := h.backtester.Run(r.Context(), strat)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result.Performance)
}
