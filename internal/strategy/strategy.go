// Package strategy produces trading decisions from market data.
package strategy

import "solana-multiplier-bot/internal/domain"

// Strategy turns one instrument's market snapshot into a decision.
type Strategy interface {
	// Decide evaluates the latest data for an instrument. Pure with
	// respect to I/O: all external values arrive in the input.
	Decide(input *Input) domain.Decision

	// ID returns strategy identifier (includes parameters).
	ID() string
}

// Input holds all data needed for one decision.
type Input struct {
	Instrument domain.Instrument
	Candles    []domain.Candle

	// HeldAmount is the free base balance observed on the exchange.
	// The authoritative value, refreshed by the caller before every call.
	HeldAmount float64

	// FreeQuoteBalance is the free quote balance available for entries.
	FreeQuoteBalance float64
}
