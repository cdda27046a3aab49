// Package stub provides a fixed in-memory market feed for testing and
// paper trading.
package stub

import (
	"context"
	"sync"

	"solana-multiplier-bot/internal/domain"
)

// Feed serves configured candles and balances. Safe for concurrent use.
type Feed struct {
	mu       sync.RWMutex
	candles  map[string][]domain.Candle // keyed by symbol
	balances map[string]domain.Balance  // keyed by currency code
}

// NewFeed creates an empty stub feed.
func NewFeed() *Feed {
	return &Feed{
		candles:  make(map[string][]domain.Candle),
		balances: make(map[string]domain.Balance),
	}
}

// SetCandles replaces the candle sequence for a symbol.
func (f *Feed) SetCandles(symbol string, candles []domain.Candle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candles[symbol] = append([]domain.Candle(nil), candles...)
}

// SetBalance sets the free balance for a currency.
func (f *Feed) SetBalance(currency string, free float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[currency] = domain.Balance{Currency: currency, Free: free}
}

// FetchCandles returns up to limit candles for the symbol, oldest first.
func (f *Feed) FetchCandles(_ context.Context, symbol, _ string, limit int) ([]domain.Candle, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	candles := f.candles[symbol]
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return append([]domain.Candle(nil), candles...), nil
}

// FetchBalances returns copies of the configured balances.
func (f *Feed) FetchBalances(context.Context) (map[string]domain.Balance, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]domain.Balance, len(f.balances))
	for k, v := range f.balances {
		out[k] = v
	}
	return out, nil
}
