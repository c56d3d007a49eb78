package backtest

import (
	"math"

	"github.com/newthinker/tradelab/internal/core"
)

// Simulate replays signals through a FLAT/LONG state machine. BUY opens a
// position when flat, SELL closes it when long; everything else is ignored.
func Simulate(signals []core.Signal) Simulation {
	sim := Simulation{
		Trades: []Trade{},
		Equity: []float64{InitialPortfolioValue},
	}
	var openTrade *Trade

	for _, sig := range signals {
		switch sig.Action {
		case core.ActionBuy:
			if openTrade == nil {
				openTrade = &Trade{
					EntrySignal: sig,
					EntryPrice:  sig.Price,
				}
			}
		case core.ActionSell:
			if openTrade != nil {
				sigCopy := sig
				openTrade.ExitSignal = &sigCopy
				openTrade.ExitPrice = sig.Price
				openTrade.Return = (openTrade.ExitPrice - openTrade.EntryPrice) / openTrade.EntryPrice
				sim.Trades = append(sim.Trades, *openTrade)

				last := sim.Equity[len(sim.Equity)-1]
				sim.Equity = append(sim.Equity, last*(1+openTrade.Return))
				openTrade = nil
			}
		}
	}

	sim.Open = openTrade
	return sim
}

// CalculateStats computes performance statistics from a simulation.
// The returned Performance carries no signals.
func CalculateStats(sim Simulation) Performance {
	var winning int
	var totalReturn float64

	for _, t := range sim.Trades {
		totalReturn += t.Return
		if t.IsWin() {
			winning++
		}
	}

	var winRate float64
	if len(sim.Trades) > 0 {
		winRate = float64(winning) / float64(len(sim.Trades)) * 100
	}

	return Performance{
		TotalReturns: totalReturn * 100, // Convert to percentage
		TotalTrades:  len(sim.Trades),
		WinRate:      winRate,
		MaxDrawdown:  calculateMaxDrawdown(sim.Equity) * 100,
		SharpeRatio:  calculateSharpeRatio(sim.Equity),
	}
}

// Evaluate simulates signals and summarizes the outcome. An empty input
// yields an all-zero summary.
func Evaluate(signals []core.Signal) Performance {
	if len(signals) == 0 {
		return Performance{Signals: []core.Signal{}}
	}
	perf := CalculateStats(Simulate(signals))
	perf.Signals = signals
	return perf
}

// calculateMaxDrawdown finds the largest peak-to-trough decline of a value
// trajectory, as a fraction of the peak.
func calculateMaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var maxDD float64
	peak := values[0]

	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// calculateSharpeRatio is mean over population standard deviation of the
// step returns of a value trajectory. No annualization, no risk-free rate.
func calculateSharpeRatio(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}

	// Calculate mean return
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	// Calculate standard deviation
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)))

	if stdDev == 0 {
		return 0
	}

	return mean / stdDev
}
