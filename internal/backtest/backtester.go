package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/metrics"
	"github.com/newthinker/tradelab/internal/storage/ticker"
	"github.com/newthinker/tradelab/internal/strategy"
	"go.uber.org/zap"
)

// DefaultMaxPoints bounds how many stored records one run evaluates.
const DefaultMaxPoints = 10000

// TickerSource supplies stored records in timestamp order.
type TickerSource interface {
	List(ctx context.Context, filter ticker.ListFilter) ([]core.Ticker, error)
}

// Option configures a Backtester.
type Option func(*Backtester)

// WithMaxPoints overrides DefaultMaxPoints.
func WithMaxPoints(n int) Option {
	return func(b *Backtester) {
		if n > 0 {
			b.maxPoints = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backtester) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics records evaluations and signals in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(b *Backtester) {
		b.metrics = reg
	}
}

// Backtester runs strategies against stored ticker data
type Backtester struct {
	source    TickerSource
	maxPoints int
	logger    *zap.Logger
	metrics   *metrics.Registry
}

// New creates a new Backtester reading from source
func New(source TickerSource, opts ...Option) *Backtester {
	b := &Backtester{
		source:    source,
		maxPoints: DefaultMaxPoints,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run loads up to maxPoints records, generates signals and evaluates them.
// An empty store yields core.ErrNoData before the strategy is consulted.
func (b *Backtester) Run(ctx context.Context, strat strategy.Strategy) (*Result, error) {
	start := time.Now()

	records, err := b.source.List(ctx, ticker.ListFilter{Limit: b.maxPoints})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, core.ErrNoData
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signals, err := strat.Generate(core.PricePoints(records))
	if err != nil {
		b.record(strat.Name(), "error", start)
		return nil, core.WrapError(core.ErrStrategyFailed, fmt.Errorf("%s: %w", strat.Name(), err))
	}

	sim := Simulate(signals)
	perf := Performance{Signals: []core.Signal{}}
	if len(signals) > 0 {
		perf = CalculateStats(sim)
		perf.Signals = signals
	}

	b.record(strat.Name(), "success", start)
	if b.metrics != nil {
		for _, sig := range signals {
			if sig.Action != core.ActionHold {
				b.metrics.RecordSignal(strat.Name(), string(sig.Action))
			}
		}
	}

	b.logger.Debug("strategy evaluated",
		zap.String("strategy", strat.Description()),
		zap.Int("points", len(records)),
		zap.Int("trades", perf.TotalTrades),
		zap.Bool("position_open", sim.Open != nil),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{
		Strategy:    strat.Name(),
		Description: strat.Description(),
		StartDate:   records[0].Datetime,
		EndDate:     records[len(records)-1].Datetime,
		Points:      len(records),
		Performance: perf,
		Simulation:  sim,
	}, nil
}

func (b *Backtester) record(strategyName, status string, start time.Time) {
	if b.metrics != nil {
		b.metrics.RecordEvaluation(strategyName, status, time.Since(start).Seconds())
	}
}
