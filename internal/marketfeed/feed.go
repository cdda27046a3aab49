// Package marketfeed supplies OHLCV candles and free balances per
// instrument. Pure data source: no decision logic lives here.
package marketfeed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"solana-multiplier-bot/internal/domain"
)

// Registry errors.
var (
	// ErrUnknownProvider is returned when no feed is registered under the
	// configured exchange name.
	ErrUnknownProvider = errors.New("unknown market feed provider")
)

// Feed is the capability interface a market data provider implements.
type Feed interface {
	// FetchCandles returns up to limit recent OHLCV candles for the
	// symbol, oldest first.
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]domain.Candle, error)

	// FetchBalances returns free balances keyed by currency code.
	FetchBalances(ctx context.Context) (map[string]domain.Balance, error)
}

// Credentials authenticate a provider.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Factory builds a Feed for a set of credentials.
type Factory func(creds Credentials) (Feed, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a provider factory under a name. Called from provider
// init functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New builds the feed registered under name.
func New(name string, creds Credentials) (Feed, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return factory(creds)
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
