package strategy

import (
	"fmt"

	"solana-multiplier-bot/internal/domain"
)

// Multiplier exit thresholds.
const (
	multiplier2x = 2.0
	multiplier3x = 3.0
)

// MultiplierSellStrategy buys once when flat and liquidates fractions of
// the position when price crosses 2x and 3x the entry price.
//
// It owns the per-instrument position state for its lifetime. Held amounts
// are never invented here: the caller supplies the exchange-observed value
// on every call, so a partial sell is reflected on the next cycle without
// the strategy remembering past sells. Only ever touched from the single
// orchestrator control flow, so no locking.
type MultiplierSellStrategy struct {
	AllocationFraction float64 // share of free quote spent per entry
	SellFraction2x     float64 // share of held amount sold at 2x
	SellFraction3x     float64 // share of held amount sold at 3x

	positions map[string]*domain.PositionState // keyed by symbol
}

// NewMultiplierSellStrategy creates the strategy with fractional
// parameters in (0, 1].
func NewMultiplierSellStrategy(allocationFraction, sellFraction2x, sellFraction3x float64) *MultiplierSellStrategy {
	return &MultiplierSellStrategy{
		AllocationFraction: allocationFraction,
		SellFraction2x:     sellFraction2x,
		SellFraction3x:     sellFraction3x,
		positions:          make(map[string]*domain.PositionState),
	}
}

// ID returns the strategy identifier including parameters.
func (s *MultiplierSellStrategy) ID() string {
	return fmt.Sprintf("MULTIPLIER_SELL_alloc%.0f_2x%.0f_3x%.0f",
		s.AllocationFraction*100,
		s.SellFraction2x*100,
		s.SellFraction3x*100)
}

// Decide evaluates one instrument.
//
// Entry: flat position, spend FreeQuoteBalance * AllocationFraction at the
// latest close. Exit: with an open entry, sell SellFraction3x of the held
// amount at >=3x, else SellFraction2x at >=2x; 3x always wins when both
// thresholds are crossed at once. Everything else holds.
func (s *MultiplierSellStrategy) Decide(input *Input) domain.Decision {
	currentPrice, ok := domain.LatestClose(input.Candles)
	if !ok || currentPrice <= 0 {
		return domain.Hold()
	}

	symbol := input.Instrument.Symbol
	held := input.HeldAmount

	state, exists := s.positions[symbol]
	if !exists {
		state = &domain.PositionState{}
		if held > 0 {
			state.EntryPrice = currentPrice
		}
		s.positions[symbol] = state
	}
	state.HeldAmount = held
	if held == 0 {
		// Fully liquidated since the last buy; the next buy starts a
		// fresh entry cycle.
		state.EntryPrice = 0
	}

	if held == 0 {
		maxAllocation := input.FreeQuoteBalance * s.AllocationFraction
		amountToBuy := maxAllocation / currentPrice
		if amountToBuy > 0 {
			state.EntryPrice = currentPrice
			return domain.Buy(amountToBuy)
		}
		return domain.Hold()
	}

	if state.Open() {
		multiplier := currentPrice / state.EntryPrice
		switch {
		case multiplier >= multiplier3x:
			return domain.Sell(held * s.SellFraction3x)
		case multiplier >= multiplier2x:
			return domain.Sell(held * s.SellFraction2x)
		}
	}

	return domain.Hold()
}

// Position returns a copy of the tracked state for a symbol.
func (s *MultiplierSellStrategy) Position(symbol string) (domain.PositionState, bool) {
	state, ok := s.positions[symbol]
	if !ok {
		return domain.PositionState{}, false
	}
	return *state, true
}

var _ Strategy = (*MultiplierSellStrategy)(nil)
