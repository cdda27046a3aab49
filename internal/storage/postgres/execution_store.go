package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-multiplier-bot/internal/domain"
	"solana-multiplier-bot/internal/storage"
)

// ExecutionStore implements storage.ExecutionStore using PostgreSQL.
type ExecutionStore struct {
	pool *Pool
}

// NewExecutionStore creates a new ExecutionStore.
func NewExecutionStore(pool *Pool) *ExecutionStore {
	return &ExecutionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ExecutionStore = (*ExecutionStore)(nil)

// Insert adds an execution. Returns ErrDuplicateKey if execution_id exists.
func (s *ExecutionStore) Insert(ctx context.Context, e *domain.SwapExecution) error {
	if e == nil || e.ExecutionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO swap_executions (
			execution_id, symbol, side, amount, amount_raw, price, tx_hash, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := s.pool.Exec(ctx, query,
		e.ExecutionID, e.Symbol, e.Side, e.Amount, e.AmountRaw, e.Price, e.TxHash, e.SubmittedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert swap execution: %w", err)
	}
	return nil
}

// GetByID retrieves an execution by its ID. Returns ErrNotFound if not exists.
func (s *ExecutionStore) GetByID(ctx context.Context, executionID string) (*domain.SwapExecution, error) {
	query := `
		SELECT execution_id, symbol, side, amount, amount_raw, price, tx_hash, submitted_at
		FROM swap_executions
		WHERE execution_id = $1
	`

	row := s.pool.QueryRow(ctx, query, executionID)
	e, err := scanExecution(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get swap execution by id: %w", err)
	}
	return e, nil
}

// GetBySymbol retrieves all executions for a symbol, ordered by submitted_at ASC.
func (s *ExecutionStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.SwapExecution, error) {
	query := `
		SELECT execution_id, symbol, side, amount, amount_raw, price, tx_hash, submitted_at
		FROM swap_executions
		WHERE symbol = $1
		ORDER BY submitted_at ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query swap executions by symbol: %w", err)
	}
	defer rows.Close()

	var result []*domain.SwapExecution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap execution: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap executions: %w", err)
	}
	return result, nil
}

// scanExecution scans one row into a SwapExecution.
func scanExecution(row pgx.Row) (*domain.SwapExecution, error) {
	var e domain.SwapExecution
	err := row.Scan(
		&e.ExecutionID, &e.Symbol, &e.Side, &e.Amount, &e.AmountRaw, &e.Price, &e.TxHash, &e.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
