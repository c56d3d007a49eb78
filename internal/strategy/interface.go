package strategy

import (
	"fmt"

	"github.com/newthinker/tradelab/internal/core"
)

// Config holds strategy configuration
type Config struct {
	Params map[string]any
}

// Int reads an integer parameter. Whole-valued floats are accepted since
// JSON and YAML decoders produce them for plain numbers.
func (c Config) Int(key string, def int) (int, error) {
	raw, ok := c.Params[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("%s must be an integer, got %v", key, v))
		}
		return int(v), nil
	default:
		return 0, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("%s must be an integer, got %T", key, raw))
	}
}

// DataRequirements specifies what data a strategy needs
type DataRequirements struct {
	PriceHistory int // Points needed before any signal can be produced
}

// Strategy turns an ordered price series into one signal per point.
type Strategy interface {
	Name() string
	Description() string
	RequiredData() DataRequirements
	Generate(points []core.PricePoint) ([]core.Signal, error)
}

// Factory builds a configured strategy.
type Factory func(cfg Config) (Strategy, error)
