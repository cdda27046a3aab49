// Package storage defines the persistence interfaces for the execution
// journal and the candle history archive.
package storage

import (
	"context"

	"solana-multiplier-bot/internal/domain"
)

// ExecutionStore provides access to swap_executions storage.
type ExecutionStore interface {
	// Insert adds an execution. Returns ErrDuplicateKey if execution_id exists.
	Insert(ctx context.Context, e *domain.SwapExecution) error

	// GetByID retrieves an execution by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, executionID string) (*domain.SwapExecution, error)

	// GetBySymbol retrieves all executions for a symbol, ordered by submitted_at ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.SwapExecution, error)
}

// CandleStore provides access to candle_history storage.
type CandleStore interface {
	// InsertBulk adds candles for a symbol. Fails the whole batch on a
	// duplicate (symbol, timeframe, timestamp_ms).
	InsertBulk(ctx context.Context, symbol, timeframe string, candles []domain.Candle) error

	// GetBySymbol retrieves all archived candles for a symbol and
	// timeframe, ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, symbol, timeframe string) ([]domain.Candle, error)
}
