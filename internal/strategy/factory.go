package strategy

import (
	"errors"
	"fmt"
)

// Strategy name constants.
const (
	NameMultiplierSell = "multiplier-sell"
)

// Factory errors.
var (
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrInvalidFraction = errors.New("strategy fraction must be in (0, 1]")
)

// Params holds strategy parameters as fractions in (0, 1].
type Params struct {
	AllocationFraction float64
	SellFraction2x     float64
	SellFraction3x     float64
}

// FromName creates a Strategy by its configured name, validating params.
func FromName(name string, params Params) (Strategy, error) {
	switch name {
	case NameMultiplierSell:
		for _, f := range []struct {
			key string
			v   float64
		}{
			{"allocation", params.AllocationFraction},
			{"sell_2x", params.SellFraction2x},
			{"sell_3x", params.SellFraction3x},
		} {
			if f.v <= 0 || f.v > 1 {
				return nil, fmt.Errorf("%w: %s=%g", ErrInvalidFraction, f.key, f.v)
			}
		}
		return NewMultiplierSellStrategy(
			params.AllocationFraction,
			params.SellFraction2x,
			params.SellFraction3x,
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
