package ma_crossover

import (
	"fmt"

	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/indicator"
	"github.com/newthinker/tradelab/internal/strategy"
)

// Name is the registry name of the strategy.
const Name = "ma_crossover"

// Default windows
const (
	DefaultShortWindow = 5
	DefaultLongWindow  = 20
)

// MACrossover implements a moving average crossover strategy
type MACrossover struct {
	shortWindow int
	longWindow  int
}

// New creates a new MA Crossover strategy
func New(shortWindow, longWindow int) *MACrossover {
	return &MACrossover{
		shortWindow: shortWindow,
		longWindow:  longWindow,
	}
}

// Factory builds the strategy from short_window and long_window params.
func Factory(cfg strategy.Config) (strategy.Strategy, error) {
	short, err := cfg.Int("short_window", DefaultShortWindow)
	if err != nil {
		return nil, err
	}
	long, err := cfg.Int("long_window", DefaultLongWindow)
	if err != nil {
		return nil, err
	}
	if short <= 0 || long <= 0 {
		return nil, core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("windows must be positive, got short=%d long=%d", short, long))
	}
	return New(short, long), nil
}

func (m *MACrossover) Name() string {
	return Name
}

func (m *MACrossover) Description() string {
	return fmt.Sprintf("MA Crossover (%d/%d)", m.shortWindow, m.longWindow)
}

func (m *MACrossover) RequiredData() strategy.DataRequirements {
	return strategy.DataRequirements{PriceHistory: m.longWindow}
}

// Generate annotates every point with both averages and a crossover tag.
// Fewer points than the long window yields no signals at all.
func (m *MACrossover) Generate(points []core.PricePoint) ([]core.Signal, error) {
	if len(points) < m.longWindow {
		return []core.Signal{}, nil
	}

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Close
	}

	shortMA, err := indicator.SMA(prices, m.shortWindow)
	if err != nil {
		return nil, err
	}
	longMA, err := indicator.SMA(prices, m.longWindow)
	if err != nil {
		return nil, err
	}

	signals := make([]core.Signal, len(points))
	for i, p := range points {
		signals[i] = core.Signal{
			Datetime: p.Time,
			Price:    p.Close,
			ShortMA:  shortMA[i],
			LongMA:   longMA[i],
			Action:   core.ActionHold,
		}
		if i > 0 {
			signals[i].Action = crossover(shortMA[i-1], longMA[i-1], shortMA[i], longMA[i])
		}
	}

	return signals, nil
}

// crossover classifies the move from the previous pair of averages to the
// current one. Any undefined average means HOLD.
func crossover(prevShort, prevLong, currShort, currLong core.OptFloat) core.Action {
	ps, ok1 := prevShort.Get()
	pl, ok2 := prevLong.Get()
	cs, ok3 := currShort.Get()
	cl, ok4 := currLong.Get()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return core.ActionHold
	}

	switch {
	// Golden Cross: short crosses above long
	case ps <= pl && cs > cl:
		return core.ActionBuy
	// Death Cross: short crosses below long
	case ps >= pl && cs < cl:
		return core.ActionSell
	default:
		return core.ActionHold
	}
}
