package backtest

import (
	"time"

	"github.com/newthinker/tradelab/internal/core"
)

// InitialPortfolioValue seeds the portfolio value trajectory.
const InitialPortfolioValue = 10000.0

// Performance is the aggregate outcome of a signal sequence, in the shape
// served to API clients.
type Performance struct {
	TotalReturns float64       `json:"total_returns"` // Sum of per-trade returns, percent
	TotalTrades  int           `json:"total_trades"`  // Completed trades only
	WinRate      float64       `json:"win_rate"`      // Percent of completed trades with positive return
	MaxDrawdown  float64       `json:"max_drawdown"`  // Largest peak-to-trough decline, percent
	SharpeRatio  float64       `json:"sharpe_ratio"`  // Unannualized mean/stddev of trajectory steps
	Signals      []core.Signal `json:"signals"`
}

// Trade represents a simulated trade from entry to exit
type Trade struct {
	EntrySignal core.Signal
	ExitSignal  *core.Signal // nil if position still open
	EntryPrice  float64
	ExitPrice   float64
	Return      float64 // Fractional return
}

// IsWin returns true if the trade was profitable
func (t Trade) IsWin() bool {
	return t.Return > 0
}

// IsClosed returns true if the trade has an exit
func (t Trade) IsClosed() bool {
	return t.ExitSignal != nil
}

// Simulation is the replay of a signal sequence through a single long-only
// position.
type Simulation struct {
	Trades []Trade   // Completed trades in order
	Open   *Trade    // Position still held at the end; excluded from stats
	Equity []float64 // Portfolio value after each completed trade, seeded with InitialPortfolioValue
}

// Result holds the complete backtest output
type Result struct {
	Strategy    string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Points      int
	Performance Performance
	Simulation  Simulation
}
