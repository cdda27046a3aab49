package domain

import "strings"

// Instrument is a tradable pair plus the chain metadata needed to route
// swaps for it. Immutable once configured.
type Instrument struct {
	Symbol          string // exchange pair, e.g. "SOL/USDT"
	Chain           string // chain identifier for the risk scan, e.g. "solana"
	ContractAddress string // on-chain contract address of the base token
	TokenIn         string // router input token address for buys
	TokenOut        string // router output token address for buys
	Decimals        int    // smallest-unit scale for router amounts
}

// DefaultDecimals is used when an instrument does not configure its own scale.
const DefaultDecimals = 6

// Base returns the base currency code of the pair ("SOL" for "SOL/USDT").
func (i Instrument) Base() string {
	base, _, _ := strings.Cut(i.Symbol, "/")
	return base
}

// Quote returns the quote currency code of the pair ("USDT" for "SOL/USDT").
func (i Instrument) Quote() string {
	_, quote, _ := strings.Cut(i.Symbol, "/")
	return quote
}

// Scale returns 10^Decimals, falling back to DefaultDecimals.
func (i Instrument) Scale() float64 {
	d := i.Decimals
	if d <= 0 {
		d = DefaultDecimals
	}
	scale := 1.0
	for range d {
		scale *= 10
	}
	return scale
}
